package helper

import (
	"strings"
	"testing"
)

type validationInner struct {
	Region string `errorTxt:"region" mandatory:"yes"`
}

type validationOuter struct {
	Source   string `errorTxt:"source connection" mandatory:"yes"`
	Output   string `errorTxt:"output" mandatory:"yes"`
	Optional string
	Inner    validationInner
	private  string
}

func TestValidateStructIsPopulated(t *testing.T) {
	err := ValidateStructIsPopulated(&validationOuter{Source: "mssql", private: "x"})
	if err == nil {
		t.Fatal("expected error for missing mandatory fields")
	}
	for _, s := range []string{"output", "region"} {
		if !strings.Contains(err.Error(), s) {
			t.Fatalf("expected error to mention %q; got %v", s, err)
		}
	}
	if strings.Contains(err.Error(), "source connection") {
		t.Fatalf("did not expect populated field in error; got %v", err)
	}
	err = ValidateStructIsPopulated(validationOuter{Source: "a", Output: "b", Inner: validationInner{Region: "eu-west-1"}})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
