package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"fragrance-sampler/models"
)

// ErrMalformedProposal marks proposal text, or a single proposal in it, that could not be parsed
var ErrMalformedProposal = errors.New("malformed proposal")

// maxProposals bounds how many proposals are taken from one response
const maxProposals = 20

const proposalSchemaURL = "https://fragrance-sampler.local/schemas/proposal.schema.json"

// proposalSchema describes one bundle proposal. Prices may be numbers or strings;
// they are only ever used to detect anomalies.
const proposalSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["lines"],
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}},
    "total": {"type": ["number", "string", "null"]},
    "lines": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["itemId", "size"],
        "properties": {
          "itemId": {"type": ["string", "integer"]},
          "size": {"type": "string"},
          "unitPrice": {"type": ["number", "string", "null"]}
        }
      }
    }
  }
}`

var compiledProposalSchema = mustCompileProposalSchema()

func mustCompileProposalSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(proposalSchemaURL, strings.NewReader(proposalSchema)); err != nil {
		panic(fmt.Sprintf("failed to load proposal schema: %v", err))
	}
	schema, err := c.Compile(proposalSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("failed to compile proposal schema: %v", err))
	}
	return schema
}

// ParseIssue describes proposal text that was dropped while parsing.
// Index is the proposal position, or -1 when the whole text was unusable.
type ParseIssue struct {
	Index  int    `json:"index"`
	Detail string `json:"detail"`
}

func (i ParseIssue) Error() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrMalformedProposal, i.Detail)
	}
	return fmt.Sprintf("%s %d: %s", ErrMalformedProposal, i.Index, i.Detail)
}

func (i ParseIssue) Unwrap() error {
	return ErrMalformedProposal
}

// ParseProposals extracts raw proposals from free-form source text.
// It never fails: unusable text yields no proposals and a ParseIssue, and a
// malformed proposal is dropped without affecting the others.
func ParseProposals(text string) ([]models.RawProposal, []ParseIssue) {
	payload, ok := extractJSON(text)
	if !ok {
		return nil, []ParseIssue{{Index: -1, Detail: "no JSON payload found"}}
	}

	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()
	var root any
	if err := decoder.Decode(&root); err != nil {
		return nil, []ParseIssue{{Index: -1, Detail: fmt.Sprintf("invalid JSON: %v", err)}}
	}

	elements, ok := proposalElements(root)
	if !ok {
		return nil, []ParseIssue{{Index: -1, Detail: "payload is neither a proposal list nor a {\"bundles\": [...]} object"}}
	}

	var issues []ParseIssue
	if len(elements) > maxProposals {
		issues = append(issues, ParseIssue{Index: maxProposals, Detail: fmt.Sprintf("%d proposals beyond the first %d ignored", len(elements)-maxProposals, maxProposals)})
		elements = elements[:maxProposals]
	}

	proposals := make([]models.RawProposal, 0, len(elements))
	for i, element := range elements {
		if err := compiledProposalSchema.Validate(element); err != nil {
			issues = append(issues, ParseIssue{Index: i, Detail: err.Error()})
			continue
		}
		proposals = append(proposals, toRawProposal(element.(map[string]any)))
	}

	return proposals, issues
}

// extractJSON returns the text between the first opening and the last closing
// bracket, which strips code fences and chatter around the payload
func extractJSON(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "}]")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func proposalElements(root any) ([]any, bool) {
	switch v := root.(type) {
	case []any:
		return v, true
	case map[string]any:
		for _, key := range []string{"bundles", "proposals"} {
			if list, ok := v[key].([]any); ok {
				return list, true
			}
		}
		if _, ok := v["lines"]; ok {
			return []any{v}, true
		}
	}
	return nil, false
}

func toRawProposal(m map[string]any) models.RawProposal {
	proposal := models.RawProposal{
		Name:         stringField(m, "name"),
		Description:  stringField(m, "description"),
		ClaimedTotal: claimedAmount(m["total"]),
	}

	if tags, ok := m["tags"].([]any); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				proposal.Tags = append(proposal.Tags, s)
			}
		}
	}

	lines, _ := m["lines"].([]any)
	proposal.Lines = make([]models.RawLine, 0, len(lines))
	for _, raw := range lines {
		line, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		proposal.Lines = append(proposal.Lines, models.RawLine{
			ItemID:           scalarString(line["itemId"]),
			Size:             stringField(line, "size"),
			ClaimedUnitPrice: claimedAmount(line["unitPrice"]),
		})
	}

	return proposal
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return ""
}

// claimedAmount reads a claimed price. Anything unreadable becomes zero,
// which the validator treats as "no claim".
func claimedAmount(v any) decimal.Decimal {
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), "R$"))
	default:
		return decimal.Zero
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
