package mailver

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Status classifies an SMTP verification outcome.
type Status string

const (
	StatusValid    Status = "valid"
	StatusCatchAll Status = "catch_all"
	StatusUnknown  Status = "unknown"
	StatusInvalid  Status = "invalid"
)

var statusPriority = map[Status]int{
	StatusValid:    0,
	StatusCatchAll: 1,
	StatusUnknown:  2,
	StatusInvalid:  3,
}

// Result is the verification outcome for one candidate address.
type Result struct {
	Email  string
	Status Status
}

const verifierHost = "sourcing.local"

// Verifier checks candidate addresses against a domain's mail server.
// Uses net/smtp directly: RCPT probing needs raw command-level control
// over the session that no mail-sending library exposes.
type Verifier struct {
	timeout time.Duration

	// swapped out in tests
	lookupMX  func(ctx context.Context, domain string) (string, error)
	checkRcpt func(ctx context.Context, mxHost, email string) (int, error)
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithTimeout sets the per-connection SMTP timeout.
func WithTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.timeout = d
	}
}

// NewVerifier builds an SMTP verifier.
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{timeout: 5 * time.Second}
	v.lookupMX = v.resolveMX
	v.checkRcpt = v.smtpRcpt
	for _, o := range opts {
		o(v)
	}
	return v
}

// Verify probes each candidate with an SMTP RCPT check, ordered best first.
// When every candidate is accepted the domain is treated as catch-all and
// all results are downgraded, since acceptance proves nothing there. A
// domain without MX records returns every candidate as unknown.
func (v *Verifier) Verify(ctx context.Context, candidates []string) []Result {
	if len(candidates) == 0 {
		return nil
	}

	domain := candidates[0][strings.LastIndex(candidates[0], "@")+1:]

	mxHost, err := v.lookupMX(ctx, domain)
	if err != nil {
		zap.L().Debug("no MX record", zap.String("domain", domain), zap.Error(err))
		results := make([]Result, len(candidates))
		for i, c := range candidates {
			results[i] = Result{Email: c, Status: StatusUnknown}
		}
		return results
	}
	zap.L().Info("resolved MX host", zap.String("domain", domain), zap.String("mx", mxHost))

	results := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		code, err := v.checkRcpt(ctx, mxHost, candidate)
		if err != nil {
			zap.L().Debug("rcpt check failed",
				zap.String("email", candidate), zap.Error(err))
			results = append(results, Result{Email: candidate, Status: StatusUnknown})
			continue
		}
		results = append(results, Result{Email: candidate, Status: classify(code)})
	}

	validCount := 0
	for _, r := range results {
		if r.Status == StatusValid {
			validCount++
		}
	}
	if validCount == len(candidates) && len(candidates) > 3 {
		zap.L().Info("catch-all domain detected",
			zap.String("domain", domain), zap.Int("accepted", validCount))
		for i := range results {
			results[i].Status = StatusCatchAll
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return statusPriority[results[i].Status] < statusPriority[results[j].Status]
	})
	return results
}

func classify(code int) Status {
	switch {
	case code == 250:
		return StatusValid
	case code >= 550 && code <= 553:
		return StatusInvalid
	default:
		return StatusUnknown
	}
}

func (v *Verifier) resolveMX(ctx context.Context, domain string) (string, error) {
	records, err := net.DefaultResolver.LookupMX(ctx, domain)
	if err != nil {
		return "", eris.Wrapf(err, "mailver: lookup MX for %s", domain)
	}
	if len(records) == 0 {
		return "", eris.Errorf("mailver: no MX records for %s", domain)
	}

	best := records[0]
	for _, r := range records[1:] {
		if r.Pref < best.Pref {
			best = r
		}
	}
	return strings.TrimSuffix(best.Host, "."), nil
}

// smtpRcpt opens a session to the MX host and issues RCPT TO for the
// candidate. The reply code, not message delivery, is the signal.
func (v *Verifier) smtpRcpt(ctx context.Context, mxHost, email string) (int, error) {
	dialer := net.Dialer{Timeout: v.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(mxHost, "25"))
	if err != nil {
		return 0, eris.Wrap(err, "mailver: dial mail server")
	}
	_ = conn.SetDeadline(time.Now().Add(v.timeout))

	client, err := smtp.NewClient(conn, mxHost)
	if err != nil {
		conn.Close()
		return 0, eris.Wrap(err, "mailver: open smtp session")
	}
	defer client.Close()

	if err := client.Hello(verifierHost); err != nil {
		return 0, eris.Wrap(err, "mailver: EHLO")
	}
	if err := client.Mail("verify@" + verifierHost); err != nil {
		return 0, eris.Wrap(err, "mailver: MAIL FROM")
	}

	err = client.Rcpt(email)
	_ = client.Quit()

	if err == nil {
		return 250, nil
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code, nil
	}
	return 0, eris.Wrap(err, "mailver: RCPT TO")
}
