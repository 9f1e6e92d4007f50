package domain

import "testing"

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusPending, JobStatusProcessing, true},
		{JobStatusProcessing, JobStatusCompleted, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusPending, JobStatusFailed, false},
		{JobStatusPending, JobStatusPending, false},
		{JobStatusProcessing, JobStatusPending, false},
		{JobStatusCompleted, JobStatusProcessing, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusFailed, JobStatusProcessing, false},
		{JobStatusFailed, JobStatusCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		JobStatusPending:    false,
		JobStatusProcessing: false,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("Terminal(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestJobKindValid(t *testing.T) {
	if !JobKindFile.Valid() || !JobKindRemoteVideo.Valid() {
		t.Fatal("expected supported kinds to be valid")
	}
	if JobKind("image").Valid() {
		t.Fatal("unexpected kind accepted")
	}
}

func TestMediaJobOwned(t *testing.T) {
	job := &MediaJob{OwnerID: "user-1"}
	if !job.Owned("user-1") {
		t.Fatal("owner not recognized")
	}
	if job.Owned("user-2") || job.Owned("") {
		t.Fatal("non-owner recognized as owner")
	}
}

func TestGeneratedContentEmpty(t *testing.T) {
	if !(GeneratedContent{}).Empty() {
		t.Fatal("zero value should be empty")
	}
	if (GeneratedContent{Notes: "n"}).Empty() {
		t.Fatal("content with notes should not be empty")
	}
}
