package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/dvloznov/zenith/internal/domain"
)

// Property names of the goals database.
const (
	PropName       = "Name"
	PropTarget     = "Target"
	PropCompleted  = "Completed"
	PropPlanStatus = "Plan Status"
	PropPlan       = "Plan"
	PropGoalID     = "Goal ID"
)

// maxRichTextLen is Notion's limit for a single rich text object.
const maxRichTextLen = 2000

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// GoalToNotionProperties converts a goal to the properties of a page in the
// goals database. The plan text is truncated to fit one rich text block.
func GoalToNotionProperties(g domain.Goal) notionapi.Properties {
	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Title: richText(g.Name),
		},
		PropGoalID: notionapi.RichTextProperty{
			RichText: richText(g.ID),
		},
		PropTarget: notionapi.NumberProperty{
			Number: g.TargetAmount.InexactFloat64(),
		},
		PropCompleted: notionapi.CheckboxProperty{
			Checkbox: g.IsCompleted,
		},
	}

	status := g.PlanStatus
	if status == "" {
		status = domain.PlanStatusIdle
	}
	props[PropPlanStatus] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: string(status)},
	}

	// Empty rich text clears a stale plan on update.
	if g.BudgetPlan != "" {
		props[PropPlan] = notionapi.RichTextProperty{
			RichText: richText(truncateRunes(g.BudgetPlan, maxRichTextLen)),
		}
	} else {
		props[PropPlan] = notionapi.RichTextProperty{RichText: []notionapi.RichText{}}
	}

	return props
}

// extractGoalID returns the Goal ID property of a page, or "" if it has none.
func extractGoalID(page notionapi.Page) string {
	var parts []notionapi.RichText
	switch prop := page.Properties[PropGoalID].(type) {
	case *notionapi.RichTextProperty:
		parts = prop.RichText
	case notionapi.RichTextProperty:
		parts = prop.RichText
	}
	if len(parts) == 0 {
		return ""
	}
	if parts[0].PlainText != "" {
		return parts[0].PlainText
	}
	if parts[0].Text != nil {
		return parts[0].Text.Content
	}
	return ""
}
