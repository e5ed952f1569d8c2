package problemgen

import (
	"errors"
	"testing"
)

func TestParamsCoercion(t *testing.T) {
	p := Params{"f": 1.5, "i": 3, "i64": int64(4), "s": "hi"}
	if v, err := p.Float("i"); err != nil || v != 3.0 {
		t.Fatalf("Float(i) = %v, %v", v, err)
	}
	if v, err := p.Int("i64"); err != nil || v != 4 {
		t.Fatalf("Int(i64) = %v, %v", v, err)
	}
	if v, err := p.Int("f"); err != nil || v != 1 {
		t.Fatalf("Int(f) = %v, %v", v, err)
	}
	if _, err := p.Float("s"); err == nil {
		t.Fatal("Float on string should fail")
	}
}

func TestParamsMissingKey(t *testing.T) {
	p := Params{}
	_, err := p.Float("nope")
	var mpe *MissingParameterError
	if !errors.As(err, &mpe) || mpe.Key != "nope" {
		t.Fatalf("err = %v, want MissingParameterError", err)
	}
}

func TestParamsCloneAndMerge(t *testing.T) {
	p := Params{"a": 1}
	c := p.Clone()
	c["a"] = 2
	if p["a"] != 1 {
		t.Fatal("clone mutated original")
	}
	p.Merge(Params{"a": 3, "b": 4})
	if p["a"] != 3 || p["b"] != 4 {
		t.Fatalf("merge result = %v", p)
	}
}
