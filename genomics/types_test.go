package genomics

import (
	"errors"
	"testing"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"zero value", PageRequest{}, PageRequest{Limit: 25}},
		{"negative offset", PageRequest{Offset: -5, Limit: 10}, PageRequest{Limit: 10}},
		{"limit over cap", PageRequest{Limit: 10000}, PageRequest{Limit: 500}},
		{"already sane", PageRequest{Offset: 50, Limit: 100}, PageRequest{Offset: 50, Limit: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Kind: "gene", ID: "ENSG1"})

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatal("errors.As failed on *NotFoundError")
	}
	if notFound.Error() == "" {
		t.Error("empty error message")
	}
}
