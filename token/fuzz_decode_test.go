package token

import "testing"

func FuzzDecode(f *testing.F) {
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJIUzI1NiJ9.eyJyb2xlIjoiQWRtaW4ifQ.sig")
	f.Add("eyJhbGciOiJub25lIn0.eyJleHAiOiJ4In0.")

	f.Fuzz(func(t *testing.T, raw string) {
		claims, err := Decode(raw)
		if err == nil && claims == nil {
			t.Fatal("nil claims without error")
		}
	})
}
