package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case ClientRecord:
		o.printClientRecord(v)
	case []ClientRecord:
		o.printClientRecords(v)
	case PlayerRecord:
		o.printPlayerRecord(v)
	case []PlayerSummary:
		o.printPlayerSummaries(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Session response type (matches API)
type Session struct {
	ID    string  `json:"id"`
	Scope *string `json:"scope"`
}

// ClientRecord response type
type ClientRecord struct {
	ID           string    `json:"id"`
	Scope        *string   `json:"scope"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// PlayerRecord response type
type PlayerRecord struct {
	ID           string          `json:"id"`
	State        json.RawMessage `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
	LastModified time.Time       `json:"last_modified"`
}

// PlayerSummary response type
type PlayerSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func scopeString(scope *string) string {
	if scope == nil {
		return "(none)"
	}
	return *scope
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Client: %s\n", s.ID)
	fmt.Printf("Scope: %s\n", scopeString(s.Scope))
}

func (o *Output) printClientRecord(c ClientRecord) {
	fmt.Printf("Client: %s\n", c.ID)
	fmt.Printf("Scope: %s\n", scopeString(c.Scope))
	fmt.Printf("Created: %s\n", c.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Modified: %s\n", c.LastModified.Format(time.RFC3339))
}

func (o *Output) printClientRecords(clients []ClientRecord) {
	fmt.Printf("Clients (%d):\n", len(clients))
	for _, c := range clients {
		fmt.Printf("  - %s  scope=%s  created=%s\n",
			c.ID, scopeString(c.Scope), c.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printPlayerRecord(p PlayerRecord) {
	fmt.Printf("Player: %s\n", p.ID)
	fmt.Printf("Created: %s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Modified: %s\n", p.LastModified.Format(time.RFC3339))

	var pretty json.RawMessage
	if indented, err := json.MarshalIndent(json.RawMessage(p.State), "", "  "); err == nil {
		pretty = indented
	} else {
		pretty = p.State
	}
	fmt.Printf("State:\n%s\n", string(pretty))
}

func (o *Output) printPlayerSummaries(players []PlayerSummary) {
	fmt.Printf("Players (%d):\n", len(players))
	for _, p := range players {
		fmt.Printf("  - %s  modified=%s\n", p.ID, p.LastModified.Format(time.RFC3339))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
