package models

import (
	"reflect"
	"testing"
)

func TestMembership_SetAppendsOnce(t *testing.T) {
	var m Membership
	m = m.Set("auth0|a", RoleManager)
	m = m.Set("auth0|b", RoleEditor)
	m = m.Set("auth0|a", RoleViewer)

	if len(m) != 2 {
		t.Fatalf("len = %d, want 2", len(m))
	}
	if role, _ := m.Role("auth0|a"); role != RoleViewer {
		t.Errorf("role of a = %q, want %q", role, RoleViewer)
	}
	if got := m.Subs(); !reflect.DeepEqual(got, []string{"auth0|a", "auth0|b"}) {
		t.Errorf("Subs() = %v", got)
	}
}

func TestMembership_RemovePreservesOrder(t *testing.T) {
	m := Membership{
		{UserSub: "a", Role: RoleManager},
		{UserSub: "b", Role: RoleEditor},
		{UserSub: "c", Role: RoleViewer},
	}

	out, removed := m.Remove("b")
	if !removed {
		t.Fatal("expected b to be removed")
	}
	if got := out.Subs(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Subs() = %v, want [a c]", got)
	}

	_, removed = out.Remove("zzz")
	if removed {
		t.Error("removing an absent sub should report false")
	}
}

func TestMembership_CountRole(t *testing.T) {
	m := Membership{
		{UserSub: "a", Role: RoleManager},
		{UserSub: "b", Role: RoleManager},
		{UserSub: "c", Role: RoleViewer},
	}
	if n := m.CountRole(RoleManager); n != 2 {
		t.Errorf("CountRole(manager) = %d, want 2", n)
	}
	if n := m.CountRole(RoleEditor); n != 0 {
		t.Errorf("CountRole(editor) = %d, want 0", n)
	}
}

func TestProject_NormalizeFoldsLegacyMembers(t *testing.T) {
	p := Project{
		Members: []string{"a", "legacy", "legacy"},
		Membership: Membership{
			{UserSub: "a", Role: RoleManager},
			{UserSub: "a", Role: RoleViewer},
			{UserSub: "b", Role: "owner"},
		},
		Tasks: []Task{{ID: "t1", Title: "x"}},
	}

	p.Normalize()

	want := Membership{
		{UserSub: "a", Role: RoleManager},
		{UserSub: "b", Role: RoleEditor},
		{UserSub: "legacy", Role: RoleEditor},
	}
	if !reflect.DeepEqual(p.Membership, want) {
		t.Errorf("Membership = %+v, want %+v", p.Membership, want)
	}
	if !reflect.DeepEqual(p.Members, []string{"a", "b", "legacy"}) {
		t.Errorf("Members = %v", p.Members)
	}
	if p.Tasks[0].Status != StatusTodo || p.Tasks[0].Priority != PriorityMedium {
		t.Errorf("task defaults not applied: %+v", p.Tasks[0])
	}
}

func TestProject_NormalizeEmpty(t *testing.T) {
	var p Project
	p.Normalize()
	if p.Membership == nil || p.Tasks == nil || p.Members == nil {
		t.Errorf("expected non-nil slices after Normalize, got %+v", p)
	}
}

func TestProject_TaskIndex(t *testing.T) {
	p := Project{Tasks: []Task{{ID: "x"}, {ID: "y"}}}
	if i := p.TaskIndex("y"); i != 1 {
		t.Errorf("TaskIndex(y) = %d, want 1", i)
	}
	if i := p.TaskIndex("nope"); i != -1 {
		t.Errorf("TaskIndex(nope) = %d, want -1", i)
	}
}
