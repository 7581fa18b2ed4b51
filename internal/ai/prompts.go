package ai

import (
	"fmt"
	"strings"

	"github.com/dvloznov/zenith/internal/domain"
)

const (
	planSystemInstruction     = "You are a friendly budget planner creating simple, motivational financial plans."
	updateSystemInstruction   = "You are a friendly budget planner updating a user's financial plan."
	scenarioSystemInstruction = `You are a helpful financial advisor providing "what-if" scenario analysis.`
)

// planSections is the structure every plan must follow. The core passes the
// resulting text through untouched; the structure is only requested.
const planSections = "The plan MUST start with a \"Summary\" section inside a markdown blockquote (>). " +
	"The summary is one sentence giving the projected timeline and the single most important action to take.\n\n" +
	"After the summary, include these sections:\n" +
	"- **Projected Timeline:** A realistic estimate of how long it will take to reach the goal.\n" +
	"- **Spending Limits:** Specific monthly spending limits for 2-3 key expense categories based on their history.\n" +
	"- **Personalized Savings Tips:** Two actionable tips based on their transactions.\n"

// transactionLines lists transactions one per line, newest first.
func transactionLines(txs []domain.Transaction) string {
	if len(txs) == 0 {
		return "(no transactions recorded yet)"
	}
	lines := make([]string, len(txs))
	for i, t := range txs {
		lines[i] = t.Line()
	}
	return strings.Join(lines, "\n")
}

func buildCreatePlanPrompt(pc PlanContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A user wants a budget plan to save for their goal: %q which has a target of $%s. ",
		pc.GoalName, domain.FormatAmount(pc.TargetAmount))
	fmt.Fprintf(&b, "Their current balance is $%s. ", domain.FormatAmount(pc.Balance))
	fmt.Fprintf(&b, "Here are their %d most recent transactions to understand their spending habits:\n", len(pc.Recent))
	b.WriteString(transactionLines(pc.Recent))
	b.WriteString("\n\nCreate a simple, actionable budget plan in markdown.\n\n")
	b.WriteString(planSections)
	return b.String()
}

func buildUpdatePlanPrompt(pc PlanContext, priorPlan string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A user wants to update their budget plan for the goal: %q (Target: $%s). ",
		pc.GoalName, domain.FormatAmount(pc.TargetAmount))
	fmt.Fprintf(&b, "Their current balance is $%s.\n\n", domain.FormatAmount(pc.Balance))
	b.WriteString("Here is their **previous plan**:\n---\n")
	b.WriteString(priorPlan)
	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "Here are their **%d most recent transactions** to analyze their latest spending habits:\n---\n", len(pc.Recent))
	b.WriteString(transactionLines(pc.Recent))
	b.WriteString("\n---\n\n")
	b.WriteString("Analyze their progress and recent spending. Generate an **updated, complete budget plan** in markdown.\n")
	b.WriteString("- The new plan replaces the old one entirely.\n")
	b.WriteString("- Identify any significant \"unplanned\" spending that deviates from the previous plan's suggestions and explain how to get back on track.\n\n")
	b.WriteString(planSections)
	return b.String()
}

func buildCategoryPrompt(description string, known []string) string {
	return fmt.Sprintf("Given the transaction description %q, suggest the most likely category. "+
		"Prioritize categories from this list: [%s]. "+
		"If none fit well, suggest a new, appropriate, single-word category. "+
		"Respond with only the category name, without any extra text or punctuation.",
		description, strings.Join(known, ", "))
}

func buildGoalsPrompt(s domain.Snapshot) string {
	return fmt.Sprintf("Based on the user's financials (Monthly Income: $%s, Monthly Expenses: $%s, Current Balance: $%s), "+
		"suggest three distinct and realistic savings goals with appropriate target amounts.",
		domain.FormatAmount(s.TotalIncome), domain.FormatAmount(s.TotalExpenses), domain.FormatAmount(s.Balance))
}

const receiptPrompt = "Analyze this receipt image. Extract merchant name, total amount (as a number), and date (in YYYY-MM-DD format)."

func buildScenarioPrompt(scenario string, s domain.Snapshot, goals []domain.Goal) string {
	names := make([]string, len(goals))
	for i, g := range goals {
		names[i] = fmt.Sprintf("%s ($%s)", g.Name, domain.FormatAmount(g.TargetAmount))
	}

	var b strings.Builder
	b.WriteString("A user wants to know the impact of a financial scenario.\n")
	b.WriteString("Current Financials:\n")
	fmt.Fprintf(&b, "- Monthly Income: $%s\n", domain.FormatAmount(s.TotalIncome))
	fmt.Fprintf(&b, "- Monthly Expenses: $%s\n", domain.FormatAmount(s.TotalExpenses))
	fmt.Fprintf(&b, "- Current Balance: $%s\n", domain.FormatAmount(s.Balance))
	fmt.Fprintf(&b, "- Savings Goals: %s\n\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "Scenario: %q\n\n", scenario)
	b.WriteString("Analyze the impact of this scenario on their balance and savings goals. ")
	b.WriteString("Provide a concise summary and updated timelines for their goals. Respond in simple markdown format.")
	return b.String()
}
