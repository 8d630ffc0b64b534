package domain

type ErrorKind string

const (
	ErrorKindConfigurationMissing ErrorKind = "configuration_missing"
	ErrorKindTransport            ErrorKind = "transport"
	ErrorKindContentShape         ErrorKind = "content_shape"
	ErrorKindSchemaValidation     ErrorKind = "schema_validation"
	ErrorKindRateLimited          ErrorKind = "rate_limited"
	ErrorKindMarketUnavailable    ErrorKind = "market_unavailable"
	ErrorKindStore                ErrorKind = "store"
	ErrorKindInternal             ErrorKind = "internal"
)

// IngestionOutcome is the result of one ingestion run. It is never stored.
type IngestionOutcome struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Message string        `json:"message"`
	Data    []*Program    `json:"data,omitempty"`
	Error   *OutcomeError `json:"error,omitempty"`
}

type OutcomeError struct {
	Kind       ErrorKind   `json:"kind"`
	Status     int         `json:"status,omitempty"`
	StatusText string      `json:"statusText,omitempty"`
	Body       string      `json:"body,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
	Detail     string      `json:"detail,omitempty"`
}

type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func SuccessOutcome(count int, message string, data []*Program) IngestionOutcome {
	return IngestionOutcome{Success: true, Count: count, Message: message, Data: data}
}

func FailedOutcome(message string, outcomeErr *OutcomeError) IngestionOutcome {
	return IngestionOutcome{Success: false, Count: 0, Message: message, Error: outcomeErr}
}

func (o IngestionOutcome) ErrorKind() ErrorKind {
	if o.Error == nil {
		return ""
	}
	return o.Error.Kind
}
