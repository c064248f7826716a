package models

import "errors"

// ErrorKind classifies domain errors for the presentation layer.
type ErrorKind int

const (
	// KindValidation covers rejected input: empty titles, blank card sides, bad thresholds.
	KindValidation ErrorKind = iota + 1
	// KindNotFound covers references to decks or cards that do not exist.
	KindNotFound
	// KindEmptySelection covers quiz requests that found nothing to quiz on.
	KindEmptySelection
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindEmptySelection:
		return "empty_selection"
	default:
		return "unknown"
	}
}

// Error is a recoverable domain error. Code is stable and used as the i18n message id.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidTitle       = &Error{Kind: KindValidation, Code: "invalidTitle", Message: "deck title must not be empty"}
	ErrEmptyFront         = &Error{Kind: KindValidation, Code: "emptyFront", Message: "card front must not be empty"}
	ErrEmptyBack          = &Error{Kind: KindValidation, Code: "emptyBack", Message: "card back must not be empty"}
	ErrEmptyKeyword       = &Error{Kind: KindValidation, Code: "emptyKeyword", Message: "keyword must not be empty"}
	ErrInvalidThreshold   = &Error{Kind: KindValidation, Code: "invalidThreshold", Message: "wrong threshold must be a positive integer"}
	ErrNoKeywordsSelected = &Error{Kind: KindValidation, Code: "noKeywordsSelected", Message: "select at least one keyword"}

	ErrDeckNotFound = &Error{Kind: KindNotFound, Code: "deckNotFound", Message: "deck not found"}
	ErrCardNotFound = &Error{Kind: KindNotFound, Code: "cardNotFound", Message: "card not found"}

	ErrEmptyDeck       = &Error{Kind: KindEmptySelection, Code: "noCards", Message: "deck has no cards"}
	ErrNoMatchingCards = &Error{Kind: KindEmptySelection, Code: "noMatchingCards", Message: "no cards match the selection"}
	ErrEmptyCardList   = &Error{Kind: KindEmptySelection, Code: "emptyCardList", Message: "quiz needs at least one card"}
)

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err references a missing deck or card.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsEmptySelection reports whether err means there was nothing to quiz on.
func IsEmptySelection(err error) bool { return KindOf(err) == KindEmptySelection }
