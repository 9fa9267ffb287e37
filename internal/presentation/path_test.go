package presentation

import "testing"

func TestPathStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{name: "simple key", path: Path{{Key: "db", IsKey: true}}, want: "db"},
		{
			name: "nested key",
			path: Path{{Key: "db", IsKey: true}, {Key: "host", IsKey: true}},
			want: "db.host",
		},
		{
			name: "sequence index",
			path: Path{{Key: "servers", IsKey: true}, {Index: 2}},
			want: "servers[2]",
		},
		{
			name: "trailing bang",
			path: Path{{Key: "driver", IsKey: true}, {Bang: true}},
			want: "driver!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Path
	}{
		{name: "key", in: "db", want: Path{{Key: "db", IsKey: true}}},
		{
			name: "nested",
			in:   "servers[0].port",
			want: Path{{Key: "servers", IsKey: true}, {Index: 0}, {Key: "port", IsKey: true}},
		},
		{
			name: "bang",
			in:   "driver!",
			want: Path{{Key: "driver", IsKey: true}, {Bang: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%+v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParsePathUnterminatedIndex(t *testing.T) {
	if _, err := ParsePath("servers[0"); err == nil {
		t.Fatal("expected error for unterminated index")
	}
}
