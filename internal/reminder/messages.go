package reminder

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/manav03panchal/artisan/internal/model"
)

// Params fills the reminder templates.
type Params struct {
	ClientName    string
	InvoiceNumber string
	AmountCents   int64
	DaysOverdue   int
}

// Message is a rendered reminder.
type Message struct {
	Title  string
	Body   string
	Urgent bool
}

// FormatAmount renders cents as a grouped decimal amount, e.g. 1,250.00.
func FormatAmount(cents int64) string {
	return humanize.FormatFloat("#,###.##", float64(cents)/100)
}

// Render builds the title and body for tier. The final tier is urgent.
func Render(tier model.Tier, p Params) Message {
	client := p.ClientName
	if client == "" {
		client = "client"
	}
	amount := FormatAmount(p.AmountCents)
	days := fmt.Sprintf("%d %s", p.DaysOverdue, plural(p.DaysOverdue, "day", "days"))

	switch tier {
	case model.TierFirst:
		return Message{
			Title: fmt.Sprintf("Invoice %s overdue", p.InvoiceNumber),
			Body: fmt.Sprintf("Invoice %s for %s (%s) is %s past due. Consider sending a friendly reminder.",
				p.InvoiceNumber, client, amount, days),
		}
	case model.TierSecond:
		return Message{
			Title: fmt.Sprintf("Second reminder: invoice %s", p.InvoiceNumber),
			Body: fmt.Sprintf("Invoice %s for %s (%s) is still unpaid after %s. Follow up with the client.",
				p.InvoiceNumber, client, amount, days),
		}
	default:
		return Message{
			Title: fmt.Sprintf("Final notice: invoice %s", p.InvoiceNumber),
			Body: fmt.Sprintf("Invoice %s for %s (%s) has been overdue for %s. Last reminder before formal recovery.",
				p.InvoiceNumber, client, amount, days),
			Urgent: true,
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
