package scenarios

import "testing"

func TestLoadEveryListedScenario(t *testing.T) {
	names := List()
	if len(names) == 0 {
		t.Fatal("no scenarios embedded")
	}
	for _, name := range names {
		sc, err := Load(name)
		if err != nil {
			t.Errorf("load %s: %v", name, err)
			continue
		}
		if sc.Name == "" || len(sc.Script) == 0 || sc.Expect.Outcome == "" {
			t.Errorf("scenario %s is underspecified", name)
		}
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("does_not_exist"); err == nil {
		t.Error("expected an error for an unknown scenario")
	}
}
