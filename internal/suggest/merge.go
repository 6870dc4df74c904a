package suggest

import "smart-todo/internal/model"

// Field names reported in MergeReport.Applied.
const (
	FieldDescription = "description"
	FieldDeadline    = "deadline"
	FieldPriority    = "priority_score"
	FieldCategory    = "category_id"
)

// MergeReport tells the caller what Merge did.
type MergeReport struct {
	Applied []string
	// UnresolvedCategory is the suggested category name that matched no
	// existing category. Empty when there was nothing to resolve.
	UnresolvedCategory string
}

// Merge fills the empty fields of current from s. A value the user already
// entered is never replaced: description only when "", deadline and
// category only when unset, priority only while it is still DefaultPriority.
func Merge(current TaskDraft, s Suggestion, categories []model.Category) (TaskDraft, MergeReport) {
	out := current.Clone()
	out.PriorityScore = ClampPriority(out.PriorityScore)
	var report MergeReport

	if s.Description != nil && out.Description == "" && *s.Description != "" {
		out.Description = *s.Description
		report.Applied = append(report.Applied, FieldDescription)
	}

	if s.Deadline != nil && out.Deadline == nil {
		out.Deadline = cloneTime(s.Deadline)
		report.Applied = append(report.Applied, FieldDeadline)
	}

	// 0.5 is both the default and a legitimate choice; it is treated as unset.
	if s.PriorityScore != nil && out.PriorityScore == DefaultPriority {
		out.PriorityScore = ClampPriority(*s.PriorityScore)
		report.Applied = append(report.Applied, FieldPriority)
	}

	if s.CategoryName != nil && out.CategoryID == nil {
		res := Resolve(*s.CategoryName, categories)
		if res.Found {
			id := res.ID
			out.CategoryID = &id
			report.Applied = append(report.Applied, FieldCategory)
		} else {
			report.UnresolvedCategory = res.Name
		}
	}

	return out, report
}
