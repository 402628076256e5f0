package service

import "context"

// StaticProposalSource returns the same text for every request.
// Used by the CLI and for local runs without a model key.
type StaticProposalSource struct {
	text string
	err  error
}

// NewStaticProposalSource creates a source that always answers text
func NewStaticProposalSource(text string) *StaticProposalSource {
	return &StaticProposalSource{text: text}
}

// NewFailingProposalSource creates a source that always fails with err
func NewFailingProposalSource(err error) *StaticProposalSource {
	return &StaticProposalSource{err: err}
}

// ProduceProposals returns the configured text or error
func (s *StaticProposalSource) ProduceProposals(ctx context.Context, _ ProposalRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

var _ ProposalSourceInterface = (*StaticProposalSource)(nil)
