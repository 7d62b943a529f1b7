package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		wantPage int
		wantSize int
	}{
		{name: "empty", in: PageRequest{}, wantPage: 1, wantSize: DefaultPageSize},
		{name: "kept", in: PageRequest{Page: 3, PageSize: 5}, wantPage: 3, wantSize: 5},
		{name: "clamped", in: PageRequest{Page: 1, PageSize: 500}, wantPage: 1, wantSize: MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.PageSize != tt.wantSize {
				t.Errorf("got page=%d size=%d, want page=%d size=%d", req.Page, req.PageSize, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 10}
	if got := req.Offset(); got != 20 {
		t.Errorf("expected offset 20, got %d", got)
	}
}

func TestNewPageResponse(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		resp := NewPageResponse([]string{"a", "b"}, PageRequest{Page: 2, PageSize: 2}, 5)
		if resp.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", resp.TotalPages)
		}
		if !resp.HasNext || !resp.HasPrevious {
			t.Errorf("expected both neighbours, got %+v", resp)
		}
	})

	t.Run("empty", func(t *testing.T) {
		resp := NewPageResponse[string](nil, PageRequest{}, 0)
		if resp.Results == nil || len(resp.Results) != 0 {
			t.Errorf("expected empty non-nil results, got %#v", resp.Results)
		}
		if resp.TotalPages != 0 || resp.HasNext || resp.HasPrevious {
			t.Errorf("unexpected metadata: %+v", resp)
		}
		if resp.PageSize != DefaultPageSize {
			t.Errorf("expected default page size, got %d", resp.PageSize)
		}
	})
}
