package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maxvaer/gmapsprobe/internal/rule"
	"github.com/maxvaer/gmapsprobe/internal/scanner"
	"golang.org/x/net/html"
)

// ReasonSource selects how a negative result's reason is read from the
// response. Every source falls back to the raw body.
type ReasonSource int

const (
	ReasonRaw          ReasonSource = iota // raw body
	ReasonErrorMessage                     // {"error_message": "..."}
	ReasonErrorObject                      // {"error": {"message": "..."}}
	ReasonErrorCamel                       // {"errorMessage": "..."}
	ReasonImage                            // image endpoints: PNG body means check manually
	ReasonSilent                           // endpoint gives no detail
	ReasonHTMLTitle                        // HTML error page, use <title>
	ReasonJSMapError                       // Maps JavaScript loader
)

const (
	silentReason       = "Verbose responses are not enabled for this API, cannot determine the reason."
	invalidKeyMapError = "InvalidKeyMapError"
	jsRawLimit         = 200
)

// imageBody spots a rendered map returned with a non-success status.
var imageBody = rule.Contains("PNG")

func (s ReasonSource) String() string {
	switch s {
	case ReasonErrorMessage:
		return "error_message"
	case ReasonErrorObject:
		return "error.message"
	case ReasonErrorCamel:
		return "errorMessage"
	case ReasonImage:
		return "image"
	case ReasonSilent:
		return "silent"
	case ReasonHTMLTitle:
		return "html-title"
	case ReasonJSMapError:
		return "js-map-error"
	default:
		return "raw"
	}
}

// Explain returns a non-empty human-readable reason for a negative result.
func (s ReasonSource) Explain(url string, resp *scanner.Response) string {
	var reason string
	switch s {
	case ReasonErrorMessage:
		reason = jsonString(resp.Body, "error_message")
	case ReasonErrorCamel:
		reason = jsonString(resp.Body, "errorMessage")
	case ReasonErrorObject:
		reason = errorObjectMessage(resp.Body)
	case ReasonImage:
		if imageBody.Match(resp) {
			reason = "Manually check the " + url + " to view the reason."
		}
	case ReasonSilent:
		reason = silentReason
	case ReasonHTMLTitle:
		reason = htmlTitle(resp.Body)
	case ReasonJSMapError:
		if bytes.Contains(resp.Body, []byte(invalidKeyMapError)) {
			reason = "Invalid API key or key restrictions"
		} else if len(resp.Body) > jsRawLimit {
			reason = string(resp.Body[:jsRawLimit])
		}
	}
	if reason != "" {
		return reason
	}
	return rawReason(resp)
}

func rawReason(resp *scanner.Response) string {
	body := strings.TrimSpace(string(resp.Body))
	if body == "" {
		return fmt.Sprintf("empty response body (HTTP %d)", resp.StatusCode)
	}
	return body
}

// jsonString reads a top-level string field. Non-JSON bodies and missing
// or non-string fields yield "".
func jsonString(body []byte, field string) string {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	raw, ok := doc[field]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// errorObjectMessage reads error.message, accepting a bare string error too.
func errorObjectMessage(body []byte) string {
	var doc struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || len(doc.Error) == 0 {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(doc.Error, &obj); err == nil {
		return obj.Message
	}
	var s string
	if err := json.Unmarshal(doc.Error, &s); err == nil {
		return s
	}
	return ""
}

// htmlTitle returns the text of the first <title> element.
func htmlTitle(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			inTitle = false
		case html.TextToken:
			if inTitle {
				if t := strings.TrimSpace(string(z.Text())); t != "" {
					return t
				}
			}
		}
	}
}
