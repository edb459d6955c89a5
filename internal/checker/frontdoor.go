package checker

import "strings"

// EndpointFingerprint summarizes what a probed endpoint served.
type EndpointFingerprint string

const (
	FingerprintDefaultErrorPage EndpointFingerprint = "default_error_page"
	FingerprintActive           EndpointFingerprint = "active"
	FingerprintUnreachable      EndpointFingerprint = "unreachable"
)

// Provider describes the edge service whose takeover signals are evaluated.
type Provider struct {
	Name string
	// Suffix is matched as a substring of the CNAME target.
	Suffix string
	// VerificationMarker is looked for inside response header names.
	VerificationMarker string
	// ErrorPhrases identify the provider's default error page (lowercase).
	ErrorPhrases []string
}

// AzureFrontDoor is the default provider profile.
var AzureFrontDoor = Provider{
	Name:               "Azure Front Door",
	Suffix:             ".azurefd.net",
	VerificationMarker: "azurefd-verification",
	ErrorPhrases: []string{
		"azure front door",
		"error 404",
		"resource you are looking for",
	},
}

// WithSuffix returns a copy of the provider matching a different CNAME suffix.
func (p Provider) WithSuffix(suffix string) Provider {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return p
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	p.Suffix = suffix
	return p
}

// IsFrontDoorTarget reports whether the CNAME target points into the provider's domain.
func (p Provider) IsFrontDoorTarget(cname string) bool {
	if p.Suffix == "" {
		return false
	}
	return strings.Contains(strings.ToLower(cname), strings.ToLower(p.Suffix))
}

// Fingerprint matches a response body against the provider's default error page.
func (p Provider) Fingerprint(body string) EndpointFingerprint {
	lower := strings.ToLower(body)
	for _, phrase := range p.ErrorPhrases {
		if strings.Contains(lower, phrase) {
			return FingerprintDefaultErrorPage
		}
	}
	return FingerprintActive
}

// FingerprintOutcome maps a probe outcome onto an EndpointFingerprint.
func (p Provider) FingerprintOutcome(outcome ProbeOutcome) EndpointFingerprint {
	if !outcome.Responded() {
		return FingerprintUnreachable
	}
	return p.Fingerprint(outcome.Body())
}

// VerificationAbsent is true when no header name carries the verification marker.
func (p Provider) VerificationAbsent(headers map[string]string) bool {
	marker := strings.ToLower(p.VerificationMarker)
	for name := range headers {
		if strings.Contains(strings.ToLower(name), marker) {
			return false
		}
	}
	return true
}

// IsFrontDoorTarget uses the AzureFrontDoor profile.
func IsFrontDoorTarget(cname string) bool {
	return AzureFrontDoor.IsFrontDoorTarget(cname)
}

// Fingerprint uses the AzureFrontDoor profile.
func Fingerprint(body string) EndpointFingerprint {
	return AzureFrontDoor.Fingerprint(body)
}

// VerificationAbsent uses the AzureFrontDoor profile.
func VerificationAbsent(headers map[string]string) bool {
	return AzureFrontDoor.VerificationAbsent(headers)
}

// SuffixShape reports whether the CNAME target carries a modern randomized
// endpoint suffix: the last hyphen-separated token of the first label is
// longer than 10 characters and contains a digit.
func SuffixShape(cname string) bool {
	label := strings.SplitN(cname, ".", 2)[0]
	tokens := strings.Split(label, "-")
	last := tokens[len(tokens)-1]
	return len(last) > 10 && strings.ContainsAny(last, "0123456789")
}
