// Package notify emails a digest of offer increases after a scan.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"sort"
	"strings"

	"offerscope-backend/services/offers"
	"offerscope-backend/services/snapshots"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("offerscope.services.notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Options struct {
	Smtp SmtpConfig `json:"smtp"`
	// Recipients get every digest; no digest is sent when empty.
	Recipients []string `json:"recipients"`
}

type Service struct {
	config Options
}

func NewService(options Options) Service {
	return Service{config: options}
}

// Increase is one line of the digest.
type Increase struct {
	Offer offers.Offer
	Delta snapshots.Delta
}

// SendDigest emails the run's increases. A run with no increases sends
// nothing and is not an error.
func (s Service) SendDigest(ctx context.Context, increases []Increase) error {
	_, span := tracer.Start(ctx, "SendDigest")
	defer span.End()

	span.SetAttributes(attribute.Int("increases", len(increases)))
	if len(increases) == 0 || len(s.config.Recipients) == 0 {
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Offerscope <%s>", s.config.Smtp.EmailAddress)
	mail.To = s.config.Recipients
	mail.Subject = fmt.Sprintf("%d offer increase(s) detected", len(increases))
	mail.Text = []byte(digestBody(increases))

	addr := fmt.Sprintf("%s:%d", s.config.Smtp.Server, s.config.Smtp.Port)
	err := mail.Send(addr, smtp.PlainAuth(
		"", s.config.Smtp.EmailAddress, s.config.Smtp.Password, s.config.Smtp.Server,
	))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send digest")
		return err
	}
	return nil
}

func digestBody(increases []Increase) string {
	sorted := make([]Increase, len(increases))
	copy(sorted, increases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Delta.Amount > sorted[j].Delta.Amount
	})

	var b strings.Builder
	b.WriteString("The following offers went up since the last scan:\n\n")
	for _, inc := range sorted {
		prev := 0.0
		if inc.Delta.Baseline != nil {
			prev = inc.Delta.Baseline.Amount
		}
		fmt.Fprintf(&b, "  %s: %s (was %g, now %g)\n",
			inc.Offer.Merchant, inc.Offer.Label, prev, inc.Offer.Amount)
		if inc.Offer.Link != "" {
			fmt.Fprintf(&b, "    %s\n", inc.Offer.Link)
		}
	}
	return b.String()
}

// CollectIncreases pairs each increased offer with its delta.
func CollectIncreases(all []offers.Offer, deltas map[string]snapshots.Delta) []Increase {
	var out []Increase
	for _, o := range all {
		d, ok := deltas[o.Key()]
		if !ok || !d.Increased {
			continue
		}
		out = append(out, Increase{Offer: o, Delta: d})
	}
	return out
}
