package model

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewCatalog(t *testing.T) {
	c := NewCatalog([]string{"react", " angular ", "", "react", "express"})

	want := []string{"react", "angular", "express"}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestCatalogContains(t *testing.T) {
	c := NewCatalog(DefaultTemplateNames)

	tests := []struct {
		name string
		want bool
	}{
		{"react", true},
		{"nestjs", true},
		{"React", false},
		{"vue", false},
		{"", false},
		{"react/../angular", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.name); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCatalogValidate(t *testing.T) {
	c := NewCatalog(DefaultTemplateNames)

	t.Run("all valid keeps order", func(t *testing.T) {
		got, err := c.Validate([]string{"express", "react"})
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		want := []TemplateName{"express", "react"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Validate() = %v, want %v", got, want)
		}
	})

	t.Run("repeats collapse to first occurrence", func(t *testing.T) {
		got, err := c.Validate([]string{"react", "nestjs", "react"})
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		want := []TemplateName{"react", "nestjs"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Validate() = %v, want %v", got, want)
		}
	})

	t.Run("first unknown fails batch", func(t *testing.T) {
		_, err := c.Validate([]string{"react", "vue", "svelte"})
		var nameErr *TemplateNameError
		if !errors.As(err, &nameErr) {
			t.Fatalf("expected *TemplateNameError, got %T (%v)", err, err)
		}
		if nameErr.Name != "vue" {
			t.Errorf("Name = %q, want vue", nameErr.Name)
		}
		if !reflect.DeepEqual(nameErr.Available, DefaultTemplateNames) {
			t.Errorf("Available = %v, want %v", nameErr.Available, DefaultTemplateNames)
		}
	})
}

func TestEntryKindString(t *testing.T) {
	if EntryFile.String() != "File" || EntryDirectory.String() != "Directory" {
		t.Errorf("unexpected kind strings: %s, %s", EntryFile, EntryDirectory)
	}
	if EntryKind(9).String() != "Unknown" {
		t.Errorf("unexpected string for unknown kind")
	}
}

func TestAssembledFileSet(t *testing.T) {
	set := AssembledFileSet{
		{OutputPath: "react/package.json", Content: []byte("{}")},
		{OutputPath: "express/index.js", Content: []byte("ok\n")},
	}

	if got := set.Paths(); !reflect.DeepEqual(got, []string{"react/package.json", "express/index.js"}) {
		t.Errorf("Paths() = %v", got)
	}
	if set.TotalBytes() != 5 {
		t.Errorf("TotalBytes() = %d, want 5", set.TotalBytes())
	}
}
