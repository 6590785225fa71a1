package playground

// Routes served by the playground backend.
const (
	RouteExecute = "/execute"
	RouteCompile = "/compile"
	RouteFormat  = "/format"
	RouteClippy  = "/clippy"
)

type ExecuteRequest struct {
	Channel   Channel   `json:"channel"`
	Mode      Mode      `json:"mode"`
	CrateType CrateType `json:"crateType"`
	Tests     bool      `json:"tests"`
	Code      string    `json:"code"`
}

type ExecuteResponse struct {
	Success bool   `json:"success"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

type CompileRequest struct {
	Target    Target    `json:"target"`
	Channel   Channel   `json:"channel"`
	Mode      Mode      `json:"mode"`
	CrateType CrateType `json:"crateType"`
	Tests     bool      `json:"tests"`
	Code      string    `json:"code"`
}

type CompileResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

type FormatRequest struct {
	Code  string      `json:"code"`
	Style FormatStyle `json:"style"`
}

type FormatResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

type ClippyRequest struct {
	Code string `json:"code"`
}

type ClippyResponse struct {
	Success bool   `json:"success"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

// NewExecuteRequest builds the execute body from a session snapshot.
func NewExecuteRequest(s Snapshot) ExecuteRequest {
	c := s.Configuration
	return ExecuteRequest{
		Channel:   c.Channel,
		Mode:      c.Mode,
		CrateType: c.CrateType,
		Tests:     c.Tests,
		Code:      s.Code,
	}
}

func NewCompileRequest(s Snapshot, target Target) CompileRequest {
	c := s.Configuration
	return CompileRequest{
		Target:    target,
		Channel:   c.Channel,
		Mode:      c.Mode,
		CrateType: c.CrateType,
		Tests:     c.Tests,
		Code:      s.Code,
	}
}
