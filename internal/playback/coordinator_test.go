package playback

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tilawa/internal/retry"
)

func TestPlay_LoadsAndPlaysCurrentVerse(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		sub := fx.s.Subscribe()

		require.NoError(t, fx.s.Play())
		assert.True(t, fx.s.Snapshot().IsLoading)
		settle()

		snap := fx.s.Snapshot()
		assert.Equal(t, StatePlaying, snap.LoadState)
		assert.True(t, snap.IsPlaying)
		assert.False(t, snap.IsLoading)
		assert.Equal(t, 1, snap.CurrentNumber)
		assert.Equal(t, []string{clipURL(1)}, fx.primary.Loads())
		assert.Equal(t, []string{clipURL(1)}, fx.primary.Plays())

		assert.Equal(t, StateChange{Previous: StateIdle, Current: StateLoading}, <-sub.StateChanged)
		assert.Equal(t, StateChange{Previous: StateLoading, Current: StatePlaying}, <-sub.StateChanged)
	})
}

func TestSettleDelay_PrecedesLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)

		require.NoError(t, fx.s.Play())
		time.Sleep(DefaultSettleDelay - time.Millisecond)
		synctest.Wait()
		assert.Empty(t, fx.primary.Loads())

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{clipURL(1)}, fx.primary.Loads())
	})
}

func TestRequestSwitch_IdempotentForLoadedVerse(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)

		require.NoError(t, fx.s.Play())
		settle()
		gen := fx.s.Snapshot().Generation

		require.NoError(t, fx.s.JumpTo(1))
		settle()

		snap := fx.s.Snapshot()
		assert.Equal(t, gen, snap.Generation, "no new request for the loaded verse")
		assert.Equal(t, StatePlaying, snap.LoadState)
		assert.Len(t, fx.primary.Loads(), 1)
		assert.Len(t, fx.primary.Plays(), 1)
	})
}

func TestRapidSkips_WithinSettleDelay_LoadOnlyLastTarget(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		require.NoError(t, fx.s.Play())
		settle()

		require.NoError(t, fx.s.Next())
		time.Sleep(20 * time.Millisecond)
		require.ErrorIs(t, fx.s.Next(), ErrSwitchPending)
		time.Sleep(20 * time.Millisecond)
		require.ErrorIs(t, fx.s.Next(), ErrSwitchPending)
		settle()

		assert.Equal(t, []string{clipURL(1), clipURL(4)}, fx.primary.Loads())
		assert.Equal(t, []string{clipURL(1), clipURL(4)}, fx.primary.Plays())
		snap := fx.s.Snapshot()
		assert.Equal(t, 4, snap.CurrentNumber)
		assert.Equal(t, StatePlaying, snap.LoadState)
	})
}

func TestRapidSkips_WhileLoading_DiscardEarlierTargets(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		require.NoError(t, fx.s.Play())
		settle()
		fx.primary.SetLoadDelay(500 * time.Millisecond)

		require.NoError(t, fx.s.Next())
		time.Sleep(DefaultSettleDelay + 10*time.Millisecond)
		synctest.Wait()
		require.Equal(t, clipURL(2), fx.primary.Source(), "first target is loading")
		assert.Equal(t, StateLoading, fx.s.Snapshot().LoadState)

		require.ErrorIs(t, fx.s.Next(), ErrSwitchPending)
		time.Sleep(10 * time.Millisecond)
		require.ErrorIs(t, fx.s.Next(), ErrSwitchPending)
		settle()

		assert.Equal(t, []string{clipURL(1), clipURL(2), clipURL(4)}, fx.primary.Loads())
		assert.Equal(t, []string{clipURL(1), clipURL(4)}, fx.primary.Plays(), "discarded targets are never audible")
		assert.Equal(t, 4, fx.s.Snapshot().CurrentNumber)
		assert.True(t, fx.s.Snapshot().IsPlaying)

		fx.rec.mu.Lock()
		defer fx.rec.mu.Unlock()
		assert.GreaterOrEqual(t, fx.rec.stale, 2)
	})
}

func TestSwitch_PreservesPausedIntent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)

		require.NoError(t, fx.s.JumpTo(3))
		settle()

		snap := fx.s.Snapshot()
		assert.Equal(t, StateReady, snap.LoadState)
		assert.Equal(t, 3, snap.CurrentNumber)
		assert.Empty(t, fx.primary.Plays())
	})
}

func TestSwitch_PauseDuringSwitchWins(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		require.NoError(t, fx.s.Play())
		settle()
		fx.primary.SetLoadDelay(200 * time.Millisecond)

		require.NoError(t, fx.s.Next())
		assert.False(t, fx.primary.Playing(), "current verse is silenced immediately")
		fx.s.Pause()
		settle()

		snap := fx.s.Snapshot()
		assert.Equal(t, StateReady, snap.LoadState)
		assert.Equal(t, []string{clipURL(1)}, fx.primary.Plays())
	})
}

func TestRetry_TwoFailuresThenSuccess(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		sub := fx.s.Subscribe()
		fx.primary.FailNext(2, nil)

		require.NoError(t, fx.s.Play())
		time.Sleep(10 * time.Second)
		synctest.Wait()

		snap := fx.s.Snapshot()
		assert.Equal(t, StatePlaying, snap.LoadState)
		assert.Empty(t, snap.ErrorMessage)
		assert.Equal(t, 0, snap.RetryCount)
		assert.Equal(t, 2, fx.primary.Reloads())
		assert.Len(t, fx.primary.Loads(), 1, "retries reload the same handle")

		select {
		case e := <-sub.Errors:
			t.Fatalf("unexpected error event: %v", e.Err)
		default:
		}
	})
}

func TestRetry_BackoffGrowsLinearly(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		fx.primary.FailNext(3, nil)

		require.NoError(t, fx.s.Play())
		time.Sleep(DefaultSettleDelay)
		synctest.Wait()
		assert.Equal(t, 0, fx.primary.Reloads())

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, 1, fx.primary.Reloads(), "first retry after 1s")
		assert.Equal(t, 1, fx.s.Snapshot().RetryCount)

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Equal(t, 2, fx.primary.Reloads(), "second retry 2s later")

		time.Sleep(3 * time.Second)
		synctest.Wait()
		assert.Equal(t, 3, fx.primary.Reloads(), "third retry 3s later")
		assert.Equal(t, StatePlaying, fx.s.Snapshot().LoadState)
	})
}

func TestRetry_ExhaustedSurfacesError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		sub := fx.s.Subscribe()
		fx.primary.FailNext(retry.DefaultMaxRetries+1, nil)

		require.NoError(t, fx.s.Play())
		time.Sleep(10 * time.Second)
		synctest.Wait()

		snap := fx.s.Snapshot()
		assert.Equal(t, StateErrored, snap.LoadState)
		assert.NotEmpty(t, snap.ErrorMessage)
		assert.Contains(t, snap.ErrorMessage, "try again")
		assert.Equal(t, retry.DefaultMaxRetries, snap.RetryCount)
		assert.False(t, snap.IsLoading, "an error leaves the coordinator idle")
		assert.Empty(t, fx.primary.Plays())

		e := <-sub.Errors
		var exhausted *retry.ExhaustedError
		require.True(t, errors.As(e.Err, &exhausted))
		assert.Equal(t, retry.DefaultMaxRetries+1, exhausted.Attempts)
	})
}

func TestRetry_TryAgainClearsError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		fx.primary.FailNext(retry.DefaultMaxRetries+1, nil)

		require.NoError(t, fx.s.Play())
		time.Sleep(10 * time.Second)
		synctest.Wait()
		require.Equal(t, StateErrored, fx.s.Snapshot().LoadState)

		require.NoError(t, fx.s.Retry())
		assert.Empty(t, fx.s.Snapshot().ErrorMessage, "a new switch clears the error")
		settle()

		snap := fx.s.Snapshot()
		assert.Equal(t, StatePlaying, snap.LoadState)
		assert.Equal(t, []string{clipURL(1)}, fx.primary.Plays())
	})
}

func TestRetry_NoopWhenNotErrored(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)

		require.NoError(t, fx.s.Retry())
		settle()
		assert.Empty(t, fx.primary.Loads())
	})
}

func TestReadyTimeout_ReleasesLock(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		fx.primary.SetAutoReady(false)

		require.NoError(t, fx.s.Play())
		time.Sleep(DefaultSettleDelay + DefaultReadyTimeout - time.Millisecond)
		synctest.Wait()
		assert.True(t, fx.s.Snapshot().IsLoading)

		time.Sleep(2 * time.Millisecond)
		synctest.Wait()

		snap := fx.s.Snapshot()
		assert.False(t, snap.IsLoading)
		assert.Equal(t, StateErrored, snap.LoadState)
		assert.Equal(t, msgSwitchFailed, snap.ErrorMessage)
		assert.Equal(t, 0, fx.primary.Reloads(), "the deadlock guard does not retry")

		// The next explicit action is accepted.
		fx.primary.SetAutoReady(true)
		require.NoError(t, fx.s.Next())
		settle()
		assert.Equal(t, StateReady, fx.s.Snapshot().LoadState)
		assert.Equal(t, 2, fx.s.Snapshot().CurrentNumber)
	})
}

func TestStaleReady_IsDiscarded(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t)
		defer fx.close(t)
		fx.primary.SetAutoReady(false)

		require.NoError(t, fx.s.Play())
		time.Sleep(DefaultSettleDelay + time.Millisecond)
		synctest.Wait()
		require.ErrorIs(t, fx.s.Next(), ErrSwitchPending)

		// The superseded load completes late; it must not start playback.
		fx.primary.CompleteLoad()
		synctest.Wait()
		assert.Empty(t, fx.primary.Plays())

		time.Sleep(DefaultSettleDelay + time.Millisecond)
		synctest.Wait()
		fx.primary.CompleteLoad()
		synctest.Wait()

		assert.Equal(t, []string{clipURL(2)}, fx.primary.Plays())
		assert.Equal(t, 2, fx.s.Snapshot().CurrentNumber)
	})
}

func TestResolveFailure_SetsError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fx := newFixture(t, func(c *Config) { c.Voice = "unknown" })
		defer fx.close(t)

		require.NoError(t, fx.s.Play())
		settle()

		snap := fx.s.Snapshot()
		assert.Equal(t, StateErrored, snap.LoadState)
		assert.Contains(t, snap.ErrorMessage, "unknown reciter")
		assert.Empty(t, fx.primary.Loads())
	})
}
