package ingest

import (
	"regexp"
	"strings"

	"github.com/pkarels/appealsmith/internal/model"
)

// Classifier assigns a document type from a file's name and content when the
// caller did not supply one explicitly. An explicit type always wins.
type Classifier struct {
	nameRules    []classifierRule
	contentRules []classifierRule
}

type classifierRule struct {
	pattern *regexp.Regexp
	docType string
}

// NewClassifier creates the classifier with the built-in rules. Name rules
// are checked before content rules: a file called "policy.txt" is a policy
// no matter what it says inside.
func NewClassifier() *Classifier {
	return &Classifier{
		nameRules: []classifierRule{
			{regexp.MustCompile(`(?i)polic|coverage|benefit`), model.DocTypePolicy},
			{regexp.MustCompile(`(?i)record|note|chart|assessment`), model.DocTypeMedicalRecord},
			{regexp.MustCompile(`(?i)denial|eob|letter|correspondence`), model.DocTypeCorrespondence},
			{regexp.MustCompile(`(?i)precedent|appeal.*(won|approved|overturned)`), model.DocTypePrecedent},
			{regexp.MustCompile(`(?i)template`), model.DocTypeTemplate},
		},
		contentRules: []classifierRule{
			{regexp.MustCompile(`(?i)coverage (criteria|policy)|covered services|plan document`), model.DocTypePolicy},
			{regexp.MustCompile(`(?i)progress note|treatment plan|chief complaint|clinical findings`), model.DocTypeMedicalRecord},
			{regexp.MustCompile(`(?i)explanation of benefits|this claim (was|has been) denied|denial reason`), model.DocTypeCorrespondence},
			{regexp.MustCompile(`(?i)(appeal|determination).*(overturned|approved|granted)`), model.DocTypePrecedent},
			{regexp.MustCompile(`\[(PATIENT|MEMBER|DATE|PROVIDER)[ _A-Z]*\]`), model.DocTypeTemplate},
		},
	}
}

// Classify returns the document type for a file. Content is only consulted
// when the name is inconclusive; unknown documents land in "other".
func (c *Classifier) Classify(name, content string) string {
	base := strings.ToLower(name)
	for _, rule := range c.nameRules {
		if rule.pattern.MatchString(base) {
			return rule.docType
		}
	}

	// Only the head of the content matters for classification.
	head := content
	if len(head) > 4000 {
		head = head[:4000]
	}
	for _, rule := range c.contentRules {
		if rule.pattern.MatchString(head) {
			return rule.docType
		}
	}

	return model.DocTypeOther
}
