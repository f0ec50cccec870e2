package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "endpoint only",
			key:  Key{Endpoint: "/api/campaign/list"},
			want: "sograph:api/campaign/list",
		},
		{
			name: "query params sorted",
			key: Key{
				Endpoint: "/api/campaign/list",
				QueryParams: url.Values{
					"pagesize": []string{"12"},
					"page":     []string{"2"},
					"status":   []string{"active"},
				},
			},
			want: "sograph:api/campaign/list:page=2:pagesize=12:status=active",
		},
		{
			name: "empty query value kept",
			key: Key{
				Endpoint:    "/api/campaign/list",
				QueryParams: url.Values{"name": []string{""}},
			},
			want: "sograph:api/campaign/list:name=",
		},
		{
			name: "address lowercased",
			key: Key{
				Endpoint: "/api/campaign/list",
				Address:  "0xABCdef",
			},
			want: "sograph:api/campaign/list:addr=0xabcdef",
		},
		{
			name: "empty endpoint",
			key:  Key{},
			want: "sograph",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_String_Deterministic(t *testing.T) {
	q := url.Values{}
	for _, k := range []string{"trending", "campaign_type", "hide_completed", "verified", "reward_type"} {
		q.Set(k, "0")
	}
	key := Key{Endpoint: "/api/campaign/list", QueryParams: q, Address: "0x1"}

	first := key.String()
	for i := 0; i < 20; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestKey_String_DistinctAddresses(t *testing.T) {
	a := Key{Endpoint: "/api/campaign/list", Address: "0x1"}
	b := Key{Endpoint: "/api/campaign/list", Address: "0x2"}
	if a.String() == b.String() {
		t.Error("keys for different addresses must differ")
	}
}
