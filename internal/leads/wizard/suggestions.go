package wizard

import "naql_backend/internal/leads/domain"

// Suggestion kinds.
const (
	SuggestionWarning = "warning"
	SuggestionInfo    = "info"
)

// Suggestion is advice shown next to the form. It never blocks navigation.
type Suggestion struct {
	Kind    string
	Message string
}

func suggestionsFor(r domain.LeadRecord) []Suggestion {
	var out []Suggestion
	if r.FromFloor != nil && int(*r.FromFloor) > 2 && r.FromElevator != domain.Yes {
		out = append(out, Suggestion{Kind: SuggestionWarning, Message: "قد تحتاج لرافعة للطوابق العليا بدون مصعد"})
	}
	if len(r.Items) > 5 {
		out = append(out, Suggestion{Kind: SuggestionInfo, Message: "ننصح بالتغليف الاحترافي للعناصر الكثيرة"})
	}
	return out
}
