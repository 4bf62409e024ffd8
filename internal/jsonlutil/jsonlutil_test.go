package jsonlutil

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type row struct {
	N int `json:"n"`
}

func TestWriteAll(t *testing.T) {
	var b strings.Builder
	err := WriteAll(&b, []int{1, 2, 3}, func(enc *json.Encoder, v int) error {
		return enc.Encode(row{N: v})
	}, nil)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := b.String(); got != "{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeErrorDoesNotBlockSender(t *testing.T) {
	var b strings.Builder
	boom := errors.New("boom")
	in, done := Start[int](&b, 1, func(*json.Encoder, int) error { return boom }, nil)
	for i := 0; i < 100; i++ {
		in <- i
	}
	close(in)
	if err := <-done; !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}
