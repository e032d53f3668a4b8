package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PATCH(path string, body any) error
	GET(path string) error
	DELETE(path string) error
	GetResponseField(field string) (any, error)
	Remember(key, value string)
	Recall(key string) string
}

// RegisterSteps registers form session step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &formSteps{tc: tc}

	ctx.Step(`^I open a blank form$`, steps.openBlankForm)
	ctx.Step(`^I set "([^"]*)" to "([^"]*)"$`, steps.setField)
	ctx.Step(`^I mark the judicial decision as amended$`, steps.markAmended)
	ctx.Step(`^I add a research row$`, steps.addResearchRow)
	ctx.Step(`^I validate the form$`, steps.validate)
	ctx.Step(`^I submit the form$`, steps.submit)
	ctx.Step(`^I discard the form$`, steps.discard)
	ctx.Step(`^I fetch the form$`, steps.fetch)

	ctx.Step(`^the form should show a "([^"]*)" notification mentioning "([^"]*)"$`, steps.shouldShowNotification)
	ctx.Step(`^the form should have (\d+) retification records?$`, steps.shouldHaveRecords)
}

type formSteps struct {
	tc TestContext
}

func (s *formSteps) formPath(suffix string) string {
	return "/forms/" + s.tc.Recall("form_id") + suffix
}

func (s *formSteps) openBlankForm(ctx context.Context) error {
	if err := s.tc.POST("/forms", map[string]any{"demanda_id": uuid.NewString()}); err != nil {
		return err
	}
	formID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("form_id", fmt.Sprint(formID))
	return nil
}

func (s *formSteps) setField(ctx context.Context, field, value string) error {
	return s.tc.PATCH(s.formPath("/fields"), map[string]any{"field": field, "value": value})
}

func (s *formSteps) markAmended(ctx context.Context) error {
	return s.tc.POST(s.formPath("/decision/amended"), map[string]any{"amended": true})
}

func (s *formSteps) addResearchRow(ctx context.Context) error {
	return s.tc.POST(s.formPath("/research-rows"), nil)
}

func (s *formSteps) validate(ctx context.Context) error {
	return s.tc.POST(s.formPath("/validate"), nil)
}

func (s *formSteps) submit(ctx context.Context) error {
	return s.tc.POST(s.formPath("/submit"), nil)
}

func (s *formSteps) discard(ctx context.Context) error {
	return s.tc.DELETE(s.formPath(""))
}

func (s *formSteps) fetch(ctx context.Context) error {
	return s.tc.GET(s.formPath(""))
}

func (s *formSteps) shouldShowNotification(ctx context.Context, severity, fragment string) error {
	raw, err := s.tc.GetResponseField("notifications")
	if err != nil {
		return err
	}
	items, _ := raw.([]any)
	for _, item := range items {
		n, _ := item.(map[string]any)
		message, _ := n["message"].(string)
		if n["severity"] == severity && strings.Contains(message, fragment) {
			return nil
		}
	}
	return fmt.Errorf("no %s notification mentioning %q in %v", severity, fragment, items)
}

func (s *formSteps) shouldHaveRecords(ctx context.Context, want int) error {
	raw, err := s.tc.GetResponseField("retifications")
	if err != nil {
		return err
	}
	items, _ := raw.([]any)
	if len(items) != want {
		return fmt.Errorf("expected %d retification records, got %d", want, len(items))
	}
	return nil
}
