package verdict

// Classification is the outcome of the takeover decision tree for one hostname
type Classification string

const (
	NoCname                Classification = "no_cname"
	NotFrontDoorEndpoint   Classification = "not_frontdoor_endpoint"
	SuffixBypassVulnerable Classification = "suffix_bypass_vulnerable"
	SuffixVerified         Classification = "suffix_verified"
	DanglingVulnerable     Classification = "dangling_vulnerable"
	EndpointActive         Classification = "endpoint_active"
	TargetUnreachable      Classification = "target_unreachable"
)

// Classifications lists every known classification in decision-tree order.
var Classifications = []Classification{
	NoCname,
	NotFrontDoorEndpoint,
	SuffixBypassVulnerable,
	SuffixVerified,
	DanglingVulnerable,
	EndpointActive,
	TargetUnreachable,
}

// Status is the operator-facing risk flag derived from a Classification
type Status string

const (
	StatusSafe       Status = "safe"
	StatusVulnerable Status = "vulnerable"
	// StatusUnknown is only produced for classifications this package does not know.
	StatusUnknown Status = "unknown"
)

// Status maps the classification onto safe/vulnerable.
func (c Classification) Status() Status {
	switch c {
	case SuffixBypassVulnerable, DanglingVulnerable:
		return StatusVulnerable
	case NoCname, NotFrontDoorEndpoint, SuffixVerified, EndpointActive, TargetUnreachable:
		return StatusSafe
	}
	return StatusUnknown
}

// Valid reports whether c is one of the declared classifications.
func (c Classification) Valid() bool {
	return c.Status() != StatusUnknown
}

// Label returns a short human-readable name.
func (c Classification) Label() string {
	switch c {
	case NoCname:
		return "No CNAME"
	case NotFrontDoorEndpoint:
		return "Not a Front Door endpoint"
	case SuffixBypassVulnerable:
		return "Suffix bypass"
	case SuffixVerified:
		return "Suffix verified"
	case DanglingVulnerable:
		return "Dangling endpoint"
	case EndpointActive:
		return "Endpoint active"
	case TargetUnreachable:
		return "Target unreachable"
	}
	return string(c)
}

func (c Classification) String() string {
	return string(c)
}

func (s Status) String() string {
	return string(s)
}

// Verdict is the immutable classification outcome for one hostname.
// The zero value is not meaningful; build verdicts with New.
type Verdict struct {
	domain         string
	cname          string
	classification Classification
	notes          string
	httpStatus     int
	inconclusive   bool
}

// Option tweaks optional verdict attributes at construction time.
type Option func(*Verdict)

// WithHTTPStatus records the status code of the probe that decided the verdict.
func WithHTTPStatus(code int) Option {
	return func(v *Verdict) {
		v.httpStatus = code
	}
}

// Inconclusive marks a verdict that was reached without a usable probe response.
func Inconclusive() Option {
	return func(v *Verdict) {
		v.inconclusive = true
	}
}

// New builds a verdict. Status is always derived from the classification.
func New(domain, cname string, classification Classification, notes string, opts ...Option) Verdict {
	v := Verdict{
		domain:         domain,
		cname:          cname,
		classification: classification,
		notes:          notes,
	}
	for _, opt := range opts {
		opt(&v)
	}
	if classification == TargetUnreachable {
		v.inconclusive = true
	}
	return v
}

// Getters

func (v Verdict) Domain() string {
	return v.domain
}

func (v Verdict) CNAME() string {
	return v.cname
}

func (v Verdict) Classification() Classification {
	return v.classification
}

func (v Verdict) Status() Status {
	return v.classification.Status()
}

func (v Verdict) Notes() string {
	return v.notes
}

func (v Verdict) HTTPStatus() int {
	return v.httpStatus
}

// IsVulnerable reports whether the verdict flags a takeover risk.
func (v Verdict) IsVulnerable() bool {
	return v.Status() == StatusVulnerable
}

// NeedsReview reports verdicts that are Safe only because a probe could not
// confirm anything.
func (v Verdict) NeedsReview() bool {
	return v.inconclusive && !v.IsVulnerable()
}

// Record is the serialized shape of a verdict used by every report format.
type Record struct {
	Domain         string `json:"domain" yaml:"domain"`
	CNAME          string `json:"cname" yaml:"cname"`
	Status         string `json:"status" yaml:"status"`
	Classification string `json:"classification" yaml:"classification"`
	Notes          string `json:"notes" yaml:"notes"`
	HTTPStatus     int    `json:"http_status,omitempty" yaml:"http_status,omitempty"`
}

// Record converts the verdict into its serialized form.
func (v Verdict) Record() Record {
	return Record{
		Domain:         v.domain,
		CNAME:          v.cname,
		Status:         v.Status().String(),
		Classification: v.classification.String(),
		Notes:          v.notes,
		HTTPStatus:     v.httpStatus,
	}
}
