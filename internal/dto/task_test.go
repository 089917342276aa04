package dto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDueDateUnmarshal(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantSet bool
		want    *time.Time
		wantErr bool
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"due_date":null}`, wantSet: true},
		{name: "empty string", body: `{"due_date":""}`, wantSet: true},
		{
			name:    "millis with Z",
			body:    `{"due_date":"2023-12-01T10:30:00.000Z"}`,
			wantSet: true,
			want:    ptrTime(time.Date(2023, 12, 1, 10, 30, 0, 0, time.UTC)),
		},
		{
			name:    "offset normalized to UTC",
			body:    `{"due_date":"2023-12-01T12:30:00+02:00"}`,
			wantSet: true,
			want:    ptrTime(time.Date(2023, 12, 1, 10, 30, 0, 0, time.UTC)),
		},
		{name: "space separated", body: `{"due_date":"2023-12-01 10:30:00.000"}`, wantErr: true},
		{name: "date only", body: `{"due_date":"2023-12-01"}`, wantErr: true},
		{name: "number", body: `{"due_date":12}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateTaskRequest
			err := json.Unmarshal([]byte(tc.body), &req)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got due_date=%v", req.DueDate.Ptr())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.DueDate.Set() != tc.wantSet {
				t.Fatalf("Set() = %v, want %v", req.DueDate.Set(), tc.wantSet)
			}
			got := req.DueDate.Ptr()
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("expected no date, got %v", *got)
			case tc.want != nil && (got == nil || !got.Equal(*tc.want)):
				t.Fatalf("got %v, want %v", got, *tc.want)
			case got != nil && got.Location() != time.UTC:
				t.Fatalf("expected UTC, got %v", got.Location())
			}
		})
	}
}

func TestTaskResponseNullFields(t *testing.T) {
	b, err := json.Marshal(TaskResponse{ID: 3, Title: "x", Priority: "low"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":3,"title":"x","description":null,"completed":false,"due_date":null,"priority":"low"}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
