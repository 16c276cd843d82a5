package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-crudgen/pkg/entity"
)

// stubDriver replays scripted answers. Inputs rejected by a validator are
// recorded and the next scripted value is tried, like survey re-prompting.
type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	rejected     []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	interruptAt  int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	for {
		if s.interruptAt > 0 && s.inputPos+1 == s.interruptAt {
			return "", ErrAborted
		}
		if s.inputPos >= len(s.inputs) {
			return "", errors.New("no input scripted")
		}
		val := s.inputs[s.inputPos]
		s.inputPos++
		if cfg.Validator != nil {
			if err := cfg.Validator(val); err != nil {
				s.rejected = append(s.rejected, val)
				continue
			}
		}
		return val, nil
	}
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRun_BuildsEntity(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"User", "Registered account",
			"email", "Email",
			"age", "Age",
			"tags", "Record<string, string>", "",
		},
		// add, required, add, required, add, required, stop
		confirm:   []bool{true, true, true, false, true, false, false},
		selectIdx: []int{0, 1, 6},
	}

	got, err := Run(context.Background(), driver)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := entity.EntitySchema{
		Name:        "User",
		Description: "Registered account",
		Properties: []entity.PropertyDescriptor{
			{Name: "email", Type: "string", Description: "Email", Required: true},
			{Name: "age", Type: "number", Description: "Age"},
			{Name: "tags", Type: "Record<string, string>"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entity mismatch (-want +got):\n%s", diff)
	}
	wantSummary := "User (3 properties)\n  email: string\n  age?: number\n  tags?: Record<string, string>"
	if diff := cmp.Diff([]string{wantSummary}, driver.infoMessages); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_RejectsInvalidNames(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"my entity", "Order", "",
			"1st", "total", "",
			"total", "count", "",
		},
		confirm:   []bool{true, true, true, true, false},
		selectIdx: []int{1, 1},
	}

	got, err := Run(context.Background(), driver)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"my entity", "1st", "total"}, driver.rejected); diff != "" {
		t.Fatalf("rejected mismatch (-want +got):\n%s", diff)
	}
	if got.Name != "Order" || len(got.Properties) != 2 {
		t.Fatalf("unexpected entity: %+v", got)
	}
}

func TestRun_NoProperties(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"Marker", ""},
		confirm: []bool{false},
	}

	got, err := Run(context.Background(), driver, WithTypes("string"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.Name != "Marker" || len(got.Properties) != 0 {
		t.Fatalf("unexpected entity: %+v", got)
	}
}

func TestRun_Aborted(t *testing.T) {
	driver := &stubDriver{
		inputs:      []string{"User", "", "email"},
		confirm:     []bool{true},
		interruptAt: 3,
	}

	if _, err := Run(context.Background(), driver); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRun_SelectionOutOfRange(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"User", "", "email"},
		confirm:   []bool{true},
		selectIdx: []int{-1},
	}

	if _, err := Run(context.Background(), driver); err == nil {
		t.Fatalf("expected out of range error")
	}
}
