package model

import "testing"

func TestContentStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to ContentStatus }{
		{ContentPending, ContentPublished},
		{ContentPending, ContentDeleted},
		{ContentPublished, ContentHidden},
		{ContentHidden, ContentPublished},
		{ContentHidden, ContentDeleted},
	}
	for _, c := range allowed {
		if !c.from.CanTransition(c.to) {
			t.Fatalf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	forbidden := []struct{ from, to ContentStatus }{
		{ContentPending, ContentHidden},
		{ContentPublished, ContentPending},
		{ContentPublished, ContentDeleted},
		{ContentHidden, ContentPending},
		{ContentDeleted, ContentPublished},
		{ContentDeleted, ContentHidden},
		{ContentDeleted, ContentPending},
	}
	for _, c := range forbidden {
		if c.from.CanTransition(c.to) {
			t.Fatalf("%s -> %s should be rejected", c.from, c.to)
		}
	}
}
