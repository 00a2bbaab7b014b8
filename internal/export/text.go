package export

import (
	"fmt"
	"html"
	"strings"

	"dinner-planner/internal/catalog"
	"dinner-planner/internal/planner"
	"dinner-planner/internal/shopping"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes s for a Telegram Markdown message.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Markdown renders the plan and the shopping list as two Telegram messages.
func Markdown(plan *planner.MealPlan, cat *catalog.Catalog, list *shopping.ShoppingList) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Dinner Plan*\n\n")
	for _, d := range plan.Plan {
		if !d.IsPlanned() {
			fmt.Fprintf(&pb, "*%s*: _%s_\n\n", markdownEscaper.Replace(d.Day), UnplannedLabel)
			continue
		}
		fmt.Fprintf(&pb, "*%s*: %s", markdownEscaper.Replace(d.Day), markdownEscaper.Replace(Title(d.MealID)))
		if d.Chef != "" {
			fmt.Fprintf(&pb, " (%s)", markdownEscaper.Replace(Title(d.Chef)))
		}
		pb.WriteString("\n")
		if meal, ok := cat.Get(d.MealID); ok && len(meal.Prep) > 0 {
			fmt.Fprintf(&pb, "_Prep: %s_\n", markdownEscaper.Replace(strings.Join(meal.Prep, ", ")))
		}
		pb.WriteString("\n")
	}
	if plan.Seed != 0 {
		fmt.Fprintf(&pb, "Seed: `%d`\n", plan.Seed)
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")
	writeMarkdownSection(&sb, shopping.HeaderMealIngredients, list.Ingredients())
	writeMarkdownSection(&sb, shopping.HeaderVeggiesAndToppings, list.VeggiesAndToppings)
	writeMarkdownSection(&sb, shopping.HeaderStaples, list.Staples)

	return pb.String(), sb.String()
}

func writeMarkdownSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n*%s*\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "• %s\n", markdownEscaper.Replace(item))
	}
}

// HTML renders the plan and the shopping list as a blog post body.
func HTML(plan *planner.MealPlan, cat *catalog.Catalog, list *shopping.ShoppingList) string {
	var sb strings.Builder
	schedule := NewSchedule(plan, cat)
	sb.WriteString("<h2>Meals</h2>")
	writeHTMLTable(&sb, schedule.Headers, schedule.Rows)
	sb.WriteString("<h2>Shopping</h2>")
	writeHTMLTable(&sb, shopping.Headers, list.Rows())
	return sb.String()
}

func writeHTMLTable(sb *strings.Builder, headers []string, rows [][]string) {
	sb.WriteString("<table><thead><tr>")
	for _, h := range headers {
		fmt.Fprintf(sb, "<th>%s</th>", html.EscapeString(h))
	}
	sb.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(sb, "<td>%s</td>", html.EscapeString(cell))
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")
}
