package review

import "testing"

func sub(kind, reviewer, status string) SubReview {
	return SubReview{Kind: kind, ReviewerID: reviewer, Status: status}
}

func TestDeriveOverallStatus(t *testing.T) {
	cases := []struct {
		name   string
		locked bool
		subs   []SubReview
		want   string
	}{
		{
			name: "nothing submitted",
			subs: []SubReview{sub(KindSelf, "e1", SubStatusPending), sub(KindManager, "m1", SubStatusPending)},
			want: OverallNotStarted,
		},
		{
			name: "partially submitted",
			subs: []SubReview{sub(KindSelf, "e1", SubStatusSubmitted), sub(KindManager, "m1", SubStatusPending)},
			want: OverallInProgress,
		},
		{
			name: "all submitted",
			subs: []SubReview{sub(KindSelf, "e1", SubStatusSubmitted), sub(KindManager, "m1", SubStatusSubmitted)},
			want: OverallCompleted,
		},
		{
			name: "partial peer set keeps in-progress",
			subs: []SubReview{
				sub(KindManager, "m1", SubStatusSubmitted),
				sub(KindPeer, "p1", SubStatusSubmitted),
				sub(KindPeer, "p2", SubStatusPending),
			},
			want: OverallInProgress,
		},
		{
			name:   "locked wins over everything",
			locked: true,
			subs:   []SubReview{sub(KindManager, "m1", SubStatusPending)},
			want:   OverallLocked,
		},
		{
			name: "no sub-reviews",
			subs: nil,
			want: OverallNotStarted,
		},
	}

	for _, tc := range cases {
		if got := DeriveOverallStatus(tc.locked, tc.subs); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

// The derivation must be a pure function of the sub-review set: any arrival
// permutation of the same submissions yields the same overall status.
func TestDeriveOverallStatusIsOrderIndependent(t *testing.T) {
	subs := []SubReview{
		sub(KindSelf, "e1", SubStatusSubmitted),
		sub(KindManager, "m1", SubStatusSubmitted),
		sub(KindPeer, "p1", SubStatusSubmitted),
		sub(KindPeer, "p2", SubStatusSubmitted),
	}

	want := DeriveOverallStatus(false, subs)
	permute(subs, func(perm []SubReview) {
		if got := DeriveOverallStatus(false, perm); got != want {
			t.Fatalf("permutation changed derived status: %s vs %s", got, want)
		}
	})
	if want != OverallCompleted {
		t.Fatalf("expected completed, got %s", want)
	}
}

func permute(subs []SubReview, visit func([]SubReview)) {
	var recurse func(k int)
	recurse = func(k int) {
		if k == len(subs) {
			visit(subs)
			return
		}
		for i := k; i < len(subs); i++ {
			subs[k], subs[i] = subs[i], subs[k]
			recurse(k + 1)
			subs[k], subs[i] = subs[i], subs[k]
		}
	}
	recurse(0)
}
