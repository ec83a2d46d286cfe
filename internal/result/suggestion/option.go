package suggestion

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/hitmap/internal/domain"
)

// Kind classifies a suggestion option by the suggester that produced it.
type Kind int

const (
	// KindSimple has text and score only.
	KindSimple Kind = iota
	// KindTerm carries a term frequency.
	KindTerm
	// KindPhrase carries a highlighted phrase.
	KindPhrase
	// KindCompletion carries a payload.
	KindCompletion
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindTerm:
		return "term"
	case KindPhrase:
		return "phrase"
	case KindCompletion:
		return "completion"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Option is one typed suggestion option.
type Option struct {
	Kind        Kind
	Text        string
	Score       float64
	Freq        int64
	Highlighted string
	Payload     any
}

func newOption(raw map[string]any) (*Option, error) {
	opt := &Option{Kind: KindSimple}

	var err error
	if opt.Text, err = cast.ToStringE(raw["text"]); err != nil {
		return nil, fieldErr("text", err)
	}
	if score, ok := raw["score"]; ok {
		if opt.Score, err = cast.ToFloat64E(score); err != nil {
			return nil, fieldErr("score", err)
		}
	}

	switch {
	case raw["freq"] != nil:
		opt.Kind = KindTerm
		if opt.Freq, err = cast.ToInt64E(raw["freq"]); err != nil {
			return nil, fieldErr("freq", err)
		}
	case raw["highlighted"] != nil:
		opt.Kind = KindPhrase
		if opt.Highlighted, err = cast.ToStringE(raw["highlighted"]); err != nil {
			return nil, fieldErr("highlighted", err)
		}
	case raw["payload"] != nil:
		opt.Kind = KindCompletion
		opt.Payload = raw["payload"]
	}

	return opt, nil
}

type optionFieldError struct {
	field string
	err   error
}

func (e *optionFieldError) Error() string { return e.field + ": " + e.err.Error() }
func (e *optionFieldError) Unwrap() error { return e.err }

func fieldErr(field string, err error) error {
	return &optionFieldError{field: field, err: err}
}

// OptionIterator is a lazy sequence over raw suggestion options.
// Options are materialized on first access and cached.
type OptionIterator struct {
	raw     []map[string]any
	options []*Option
}

// NewOptionIterator wraps raw option records without materializing them.
func NewOptionIterator(raw []map[string]any) *OptionIterator {
	return &OptionIterator{raw: raw}
}

// Len returns the number of options.
func (it *OptionIterator) Len() int { return len(it.raw) }

// Exists reports whether i is a valid position.
func (it *OptionIterator) Exists(i int) bool { return i >= 0 && i < len(it.raw) }

// Raw returns the raw option records.
func (it *OptionIterator) Raw() []map[string]any { return it.raw }

// Get returns the option at position i.
func (it *OptionIterator) Get(i int) (*Option, error) {
	if !it.Exists(i) {
		return nil, domain.NewNotFound(strconv.Itoa(i))
	}
	if it.options == nil {
		it.options = make([]*Option, len(it.raw))
	}
	if opt := it.options[i]; opt != nil {
		return opt, nil
	}

	opt, err := newOption(it.raw[i])
	if err != nil {
		ce := &domain.ConversionError{Type: "suggestion_option", ID: strconv.Itoa(i), Err: err}
		var fe *optionFieldError
		if errors.As(err, &fe) {
			ce.Field, ce.Err = fe.field, fe.err
		}
		return nil, ce
	}
	it.options[i] = opt
	return opt, nil
}

// All materializes every option in order; the first failure aborts.
func (it *OptionIterator) All() ([]*Option, error) {
	out := make([]*Option, 0, len(it.raw))
	for i := range it.raw {
		opt, err := it.Get(i)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		out = append(out, opt)
	}
	return out, nil
}
