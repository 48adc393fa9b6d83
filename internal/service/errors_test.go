package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFoundError("article"), KindNotFound},
		{"invalid state", InvalidStateError("nope"), KindInvalidState},
		{"already member", AlreadyMemberError(), KindAlreadyMember},
		{"not member", NotMemberError(), KindNotMember},
		{"already processed", AlreadyProcessedError(), KindAlreadyProcessed},
		{"expired code", ExpiredCodeError(), KindExpired},
		{"invalid code", InvalidCodeError(), KindInvalidCode},
		{"validation", ValidationError("bad"), KindValidation},
		{"unauthorized", UnauthorizedError("no"), KindUnauthorized},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("loading: %w", NotFoundError("community"))
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want %v", got, KindNotFound)
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := NotFoundError("community")
	if err.Error() != "community not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
