package events_test

import (
	"testing"

	"github.com/ardanlabs/provenance/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEvents(t *testing.T) {
	t.Log("Given the need to fan out events to subscribers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two subscribers are registered.", testID)
		{
			evts := events.New()

			ch1 := evts.Acquire("one")
			ch2 := evts.Acquire("two")

			if evts.Acquire("one") != ch1 {
				t.Fatalf("\t%s\tTest %d:\tShould get the same channel for the same id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the same channel for the same id.", success, testID)

			evts.Send("viewer: block[1]")

			for _, ch := range []chan string{ch1, ch2} {
				if got := <-ch; got != "viewer: block[1]" {
					t.Fatalf("\t%s\tTest %d:\tShould receive the event, got %q.", failed, testID, got)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould receive the event on every channel.", success, testID)

			if err := evts.Release("one"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to release: %v", failed, testID, err)
			}
			if _, open := <-ch1; open {
				t.Fatalf("\t%s\tTest %d:\tShould close the released channel.", failed, testID)
			}
			if err := evts.Release("one"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not release twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to release once.", success, testID)

			evts.Shutdown()
			if _, open := <-ch2; open || evts.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould close every channel on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel on shutdown.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a subscriber falls behind.", testID)
		{
			evts := events.New()
			ch := evts.Acquire("slow")

			for range 150 {
				evts.Send("event")
			}

			if len(ch) != cap(ch) {
				t.Fatalf("\t%s\tTest %d:\tShould drop events past the buffer, got %d.", failed, testID, len(ch))
			}
			t.Logf("\t%s\tTest %d:\tShould drop events past the buffer without blocking.", success, testID)
		}
	}
}
