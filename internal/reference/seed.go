package reference

import (
	"demandas/internal/form/models"
	"demandas/pkg/platform/strings"
)

// numbered turns display names into catalog values with ids starting at 1.
// Duplicates and blanks are dropped first.
func numbered(names ...string) []models.SearchableValue {
	names = strings.DedupeAndTrim(names)
	out := make([]models.SearchableValue, len(names))
	for i, n := range names {
		out[i] = models.SearchableValue{ID: i + 1, DisplayName: n}
	}
	return out
}

// StaticCatalog returns the seeded reference data used when no external
// catalog is configured.
func StaticCatalog() *Catalog {
	return &Catalog{
		DocumentTypes: []DocumentType{
			{Name: models.DocumentTypeOficio, Subjects: strings.DedupeAndTrim([]string{
				"Encaminhamento de decisão judicial",
				"Requisição de dados cadastrais",
				"Reiteração de ofício",
				"Comunicação de descumprimento",
				"Outros",
			})},
			{Name: models.DocumentTypeOficioCircular, Subjects: strings.DedupeAndTrim([]string{
				"Encaminhamento de decisão judicial",
				"Outros",
			})},
			{Name: models.DocumentTypeMidia, Subjects: []string{}},
		},
		Recipients: []Recipient{
			{
				SearchableValue: models.SearchableValue{ID: 1, DisplayName: "Banco do Brasil S.A."},
				Addressing: numbered(
					"Diretoria Jurídica",
					"Gerência de Atendimento a Ofícios Judiciais",
				),
			},
			{
				SearchableValue: models.SearchableValue{ID: 2, DisplayName: "Caixa Econômica Federal"},
				Addressing:      numbered("Superintendência Regional de Goiás"),
			},
			{SearchableValue: models.SearchableValue{ID: 3, DisplayName: "Receita Federal do Brasil"}},
			{
				SearchableValue: models.SearchableValue{ID: 4, DisplayName: "Telefônica Brasil S.A. (Vivo)"},
				Addressing: numbered(
					"Departamento de Quebra de Sigilo",
					"Jurídico Corporativo",
				),
			},
			{SearchableValue: models.SearchableValue{ID: 5, DisplayName: "Claro S.A."}},
			{SearchableValue: models.SearchableValue{ID: 6, DisplayName: "TIM S.A."}},
		},
		Authorities: numbered(
			"Juiz de Direito",
			"Juiz Federal",
			"Desembargador",
			"Promotor de Justiça",
			"Delegado de Polícia",
		),
		Courts: numbered(
			"1ª Vara Criminal de Goiânia",
			"11ª Promotoria de Justiça de Goiânia",
			"2ª Vara Federal de Anápolis",
			"Tribunal de Justiça do Estado de Goiás",
			"Tribunal Regional Federal da 1ª Região",
		),
		Analysts: numbered(
			"Ana Paula Ribeiro",
			"João da Silva",
			"Márcia Conceição",
			"Sérgio Araújo",
		),
		MediaTypes: numbered("CD", "DVD", "Pen drive", "HD externo"),
		IdentifierTypes: numbered(
			"CPF",
			"CNPJ",
			"Telefone",
			"E-mail",
			"Placa de veículo",
		),
	}
}
