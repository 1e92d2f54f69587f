package playback

import (
	"errors"
	"testing"
	"testing/synctest"

	"github.com/llehouerou/tilawa/internal/gate"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		sub.sendState(StateChange{Previous: StateLoading, Current: StatePlaying})
		sub.sendItem(ItemChange{Index: 1, Number: 2})
		sub.sendMode(ModeChange{Mode: ModeRepeat, RepeatCount: 3})
		sub.sendNotice(Notice{Kind: NoticeCollectionComplete, Number: 7})
		sub.sendRedirect(RedirectEvent{Redirect: gate.Redirect{CollectionID: 1, ItemNumber: 6}})
		sub.sendError(ErrorEvent{Operation: "load verse", Err: errors.New("boom")})

		e := <-sub.StateChanged
		if e.Current != StatePlaying {
			t.Errorf("StateChanged.Current = %v, want Playing", e.Current)
		}

		ic := <-sub.ItemChanged
		if ic.Number != 2 {
			t.Errorf("ItemChanged.Number = %d, want 2", ic.Number)
		}

		m := <-sub.ModeChanged
		if m.Mode != ModeRepeat || m.RepeatCount != 3 {
			t.Errorf("ModeChanged = %+v, want Repeat/3", m)
		}

		n := <-sub.Notices
		if n.Kind != NoticeCollectionComplete {
			t.Errorf("Notices.Kind = %v, want CollectionComplete", n.Kind)
		}

		r := <-sub.Redirects
		if r.Redirect.ItemNumber != 6 {
			t.Errorf("Redirects.ItemNumber = %d, want 6", r.Redirect.ItemNumber)
		}

		er := <-sub.Errors
		if er.Operation != "load verse" {
			t.Errorf("Errors.Operation = %q, want load verse", er.Operation)
		}
	})
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	// Fill buffer
	for range eventBufferSize + 5 {
		sub.sendNotice(Notice{Kind: NoticeSwitchPending})
	}

	count := 0
	for {
		select {
		case <-sub.Notices:
			count++
		default:
			goto done
		}
	}
done:
	if count != eventBufferSize {
		t.Errorf("received %d events, want %d (buffer size)", count, eventBufferSize)
	}
}

func TestNoticeKind_String(t *testing.T) {
	tests := []struct {
		kind NoticeKind
		want string
	}{
		{NoticeItemComplete, "ItemComplete"},
		{NoticeCollectionComplete, "CollectionComplete"},
		{NoticeSwitchPending, "SwitchPending"},
		{NoticeRepeat, "Repeat"},
		{NoticeKind(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
