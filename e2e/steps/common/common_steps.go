package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Authenticate(name string) error
	ClearAccessToken()
	GET(path string) error
	GetStatus() int
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers the steps every feature shares
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the demandas API is running$`, steps.apiIsRunning)
	ctx.Step(`^I am authenticated as analyst "([^"]*)"$`, steps.authenticateAs)
	ctx.Step(`^I am not authenticated$`, steps.notAuthenticated)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response should have field "([^"]*)"$`, steps.shouldHaveField)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) apiIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health"); err != nil {
		return err
	}
	if s.tc.GetStatus() != 200 {
		return fmt.Errorf("health returned %d", s.tc.GetStatus())
	}
	return nil
}

func (s *commonSteps) authenticateAs(ctx context.Context, name string) error {
	return s.tc.Authenticate(name)
}

func (s *commonSteps) notAuthenticated(ctx context.Context) error {
	s.tc.ClearAccessToken()
	return nil
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.GetStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) shouldHaveField(ctx context.Context, field string) error {
	_, err := s.tc.GetResponseField(field)
	return err
}
