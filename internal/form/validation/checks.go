package validation

import (
	"fmt"
	"strconv"
	"strings"

	"demandas/internal/form/combobox"
	"demandas/internal/form/models"
	"demandas/internal/form/retification"
)

type check struct {
	key     combobox.FieldKey
	label   string
	missing func() bool
}

func blankText(s string) func() bool {
	return func() bool { return strings.TrimSpace(s) == "" }
}

func blankValue(v *models.SearchableValue) func() bool {
	return func() bool { return v.IsBlank() }
}

// checksFor lists the required-field checks in the order users fill the form.
func checksFor(in Input) []check {
	f := in.Form
	checks := []check{
		{combobox.Key(models.FieldDocumentType), "Tipo de documento", blankText(f.DocumentType)},
	}
	if f.DocumentType != models.DocumentTypeMidia {
		checks = append(checks, check{combobox.Key(models.FieldSubject), "Assunto", blankText(f.Subject)})
	}
	checks = append(checks,
		check{combobox.Key(models.FieldNumber), "Número", blankText(f.Number)},
		check{combobox.Key(models.FieldAnalyst), "Analista", blankValue(f.Analyst)},
	)
	if f.IsCircular() {
		checks = append(checks, check{combobox.Key(models.FieldRecipients), "Destinatários", func() bool {
			for i := range f.Recipients {
				if !f.Recipients[i].IsBlank() {
					return false
				}
			}
			return true
		}})
	} else {
		checks = append(checks, check{combobox.Key(models.FieldRecipient), "Destinatário", blankValue(f.Recipient)})
		if in.AddressingRequired {
			checks = append(checks, check{combobox.Key(models.FieldAddressing), "Endereçamento", blankValue(f.Addressing)})
		}
	}

	if in.Rule.Section2.Required {
		checks = append(checks,
			check{combobox.Key(models.FieldAuthority), "Autoridade", blankValue(f.Decision.Authority)},
			check{combobox.Key(models.FieldCourt), "Juízo", blankValue(f.Decision.Court)},
			check{combobox.Key(models.FieldSigningDate), "Data de assinatura", blankText(f.Decision.SigningDate)},
		)
	}
	if in.Rule.Section3.Required {
		checks = append(checks,
			check{combobox.Key(models.FieldMediaType), "Tipo de mídia", blankValue(f.Media.Type)},
			check{combobox.Key(models.FieldMediaIdentifier), "Identificação da mídia", blankText(f.Media.Identifier)},
		)
	}
	if in.Rule.Section2.Required && f.Decision.Amended {
		for i, r := range in.Chain {
			group := string(r.ID)
			label := retification.Label(i + 1)
			checks = append(checks,
				check{combobox.GroupKey(models.FieldAuthority, group), "Autoridade da " + label, blankValue(r.Authority)},
				check{combobox.GroupKey(models.FieldCourt, group), "Juízo da " + label, blankValue(r.Court)},
				check{combobox.GroupKey(models.FieldSigningDate, group), "Data de assinatura da " + label, blankText(r.SigningDate)},
			)
		}
	}
	if in.Rule.Section4.Required {
		for i, row := range f.Research {
			group := strconv.Itoa(i)
			checks = append(checks,
				check{combobox.GroupKey(models.FieldIdentifierType, group), fmt.Sprintf("Tipo de identificador (linha %d)", i+1), blankValue(row.IdentifierType)},
				check{combobox.GroupKey(models.FieldResearchIdentifier, group), fmt.Sprintf("Identificador (linha %d)", i+1), blankText(row.Identifier)},
			)
		}
	}
	return checks
}
