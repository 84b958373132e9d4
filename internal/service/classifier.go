package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/david16260/gestor-documental/internal/models"
)

// Classifier assigns a document to a documentary series based on its name.
// Implementations are best effort and never fail ingestion.
type Classifier interface {
	Classify(filename, extension string) models.Classification
}

// NewClassifier selects a strategy by name. Unknown strategies fall back to
// the rules engine.
func NewClassifier(strategy string, logger *zap.Logger) Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strategy) {
	case "", "rules":
		return NewRulesClassifier(logger)
	default:
		logger.Warn("unknown classifier strategy, using rules", zap.String("strategy", strategy))
		return NewRulesClassifier(logger)
	}
}

// classificationRule maps a filename keyword to a documentary series.
type classificationRule struct {
	keyword         string
	serie           string
	subserie        string
	category        string
	confidentiality string
	documentType    string
}

// RulesClassifier classifies by keyword lookup over the lowercased filename.
type RulesClassifier struct {
	rules  []classificationRule
	logger *zap.Logger
}

// NewRulesClassifier builds the keyword table.
func NewRulesClassifier(logger *zap.Logger) *RulesClassifier {
	return &RulesClassifier{
		logger: logger,
		rules: []classificationRule{
			{keyword: "factura", serie: "Finanzas", subserie: "Facturas", category: "Finanzas > Facturas", confidentiality: "Alta", documentType: "Factura"},
			{keyword: "contrato", serie: "Legal", subserie: "Contratos", category: "Legal > Contratos", confidentiality: "Confidencial", documentType: "Contrato"},
			{keyword: "acta", serie: "Gobierno", subserie: "Actas", category: "Gobierno > Actas", confidentiality: "Media", documentType: "Acta"},
			{keyword: "informe", serie: "Operaciones", subserie: "Informes", category: "Operaciones > Informes", confidentiality: "Media", documentType: "Informe"},
		},
	}
}

// Classify checks each keyword against the filename; the first hit wins.
// Images get their own bucket, everything else lands in General.
func (c *RulesClassifier) Classify(filename, extension string) models.Classification {
	lower := strings.ToLower(filename)
	for _, rule := range c.rules {
		if strings.Contains(lower, rule.keyword) {
			return models.Classification{
				Serie:           rule.serie,
				Subserie:        rule.subserie,
				Category:        rule.category,
				Confidentiality: rule.confidentiality,
				DocumentType:    rule.documentType,
				Confidence:      0.7,
				Keywords:        []string{rule.keyword},
			}
		}
	}

	switch strings.ToLower(strings.TrimPrefix(extension, ".")) {
	case "png", "jpg", "jpeg":
		return models.Classification{
			Serie:           "Imágenes",
			Subserie:        "Imágenes",
			Category:        "Imágenes",
			Confidentiality: "Media",
			DocumentType:    "Imagen",
			Confidence:      0.3,
		}
	}

	return models.Classification{
		Serie:           "General",
		Subserie:        "General",
		Category:        "General",
		Confidentiality: "Media",
		DocumentType:    "Documento",
		Confidence:      0.3,
	}
}
