package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestRequestDataRoundTrip(t *testing.T) {
	if GetRequestData(context.Background()) != nil {
		t.Fatalf("expected nil request data on bare context")
	}
	id := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{UserID: id, Email: "a@b.c"})
	rd := GetRequestData(ctx)
	if rd == nil || rd.UserID != id || rd.Email != "a@b.c" {
		t.Fatalf("unexpected request data: %+v", rd)
	}
}

func TestTraceDataRoundTrip(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t", RequestID: "r"})
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t" || td.RequestID != "r" {
		t.Fatalf("unexpected trace data: %+v", td)
	}
}

func TestNilContext(t *testing.T) {
	if GetTraceData(nil) != nil || GetRequestData(nil) != nil {
		t.Fatalf("expected nil lookups on nil context")
	}
	if Default(nil) == nil {
		t.Fatalf("Default(nil) returned nil")
	}
}
