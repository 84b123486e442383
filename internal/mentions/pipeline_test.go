package mentions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nahidhasan/feedpulse/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory resolves usernames from a fixed account set.
type fakeDirectory struct {
	accounts map[string]Account
	lookups  int
}

func (d *fakeDirectory) FindByUsernames(ctx context.Context, usernames []string) ([]Account, error) {
	d.lookups++
	var out []Account
	for _, name := range usernames {
		if acct, ok := d.accounts[name]; ok {
			out = append(out, acct)
		}
	}
	return out, nil
}

// fakeNotifier records tag notifications and can fail selected targets.
type fakeNotifier struct {
	created map[uuid.UUID]uuid.UUID // to -> from
	failFor map[uuid.UUID]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{created: make(map[uuid.UUID]uuid.UUID), failFor: make(map[uuid.UUID]error)}
}

func (n *fakeNotifier) CreateTag(ctx context.Context, from, to uuid.UUID) error {
	if err, ok := n.failFor[to]; ok {
		return err
	}
	n.created[to] = from
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(context.Background(), logger.WithOutputDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(log.Close)
	return log
}

type pipelineFixture struct {
	processor *Processor
	directory *fakeDirectory
	notifier  *fakeNotifier
	store     *memThrottleStore
	clock     *fakeClock
	alice     Account
	bob       Account
	carol     Account
}

func newPipelineFixture(t *testing.T, cfg Config) *pipelineFixture {
	t.Helper()

	alice := Account{ID: uuid.New(), Username: "alice"}
	bob := Account{ID: uuid.New(), Username: "bob"}
	carol := Account{ID: uuid.New(), Username: "carol"}

	directory := &fakeDirectory{accounts: map[string]Account{
		"alice": alice,
		"bob":   bob,
		"carol": carol,
	}}
	notifier := newFakeNotifier()

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := newMemStore(clock.Now)
	throttle := NewThrottle(store, cfg)
	throttle.now = clock.Now

	processor := NewProcessor(directory, notifier, throttle, testLogger(t), cfg)

	return &pipelineFixture{
		processor: processor,
		directory: directory,
		notifier:  notifier,
		store:     store,
		clock:     clock,
		alice:     alice,
		bob:       bob,
		carol:     carol,
	}
}

func (f *pipelineFixture) run(t *testing.T, author Account, text string) (*Result, error) {
	t.Helper()
	ctx := context.Background()

	candidates, err := f.processor.Precheck(ctx, author.ID, text)
	if err != nil {
		return nil, err
	}
	return f.processor.Process(ctx, Submission{
		AuthorID:    author.ID,
		Text:        text,
		ContentID:   uuid.New(),
		ContentKind: "post",
	}, candidates)
}

func TestPrecheckNoMarkerSkipsThrottle(t *testing.T) {
	f := newPipelineFixture(t, Config{})

	candidates, err := f.processor.Precheck(context.Background(), f.alice.ID, "a perfectly ordinary post")
	require.NoError(t, err)
	assert.Nil(t, candidates)
	assert.Empty(t, f.store.calls, "throttle store must not be consulted without an @")
}

func TestPrecheckTooManyMentionsFailsFast(t *testing.T) {
	f := newPipelineFixture(t, Config{MaxPerSubmission: 10})

	text := "@u1 @u2 @u3 @u4 @u5 @u6 @u7 @u8 @u9 @u10 @u11"
	_, err := f.processor.Precheck(context.Background(), f.alice.ID, text)

	var tooMany *TooManyMentionsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 10, tooMany.Max)
	assert.Empty(t, f.store.calls, "rejected submission must not consume throttle state")
	assert.Zero(t, f.directory.lookups, "rejected submission must not hit the account store")
}

func TestPrecheckExactlyMaxMentionsPasses(t *testing.T) {
	f := newPipelineFixture(t, Config{MaxPerSubmission: 10})

	text := "@u1 @u2 @u3 @u4 @u5 @u6 @u7 @u8 @u9 @u10"
	candidates, err := f.processor.Precheck(context.Background(), f.alice.ID, text)
	require.NoError(t, err)
	assert.Len(t, candidates, 10)
}

func TestPrecheckDuplicatesDoNotCountTowardBound(t *testing.T) {
	f := newPipelineFixture(t, Config{MaxPerSubmission: 2})

	candidates, err := f.processor.Precheck(context.Background(), f.alice.ID, "@bob @bob @bob @carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, candidates)
}

func TestProcessHappyPath(t *testing.T) {
	f := newPipelineFixture(t, Config{})

	result, err := f.run(t, f.alice, "hey @bob and @carol, check this out")
	require.NoError(t, err)

	assert.Equal(t, 2, result.MentionsProcessed)
	assert.ElementsMatch(t, []string{"bob", "carol"}, result.Mentions)
	assert.Empty(t, result.Warning)
	assert.Equal(t, f.alice.ID, f.notifier.created[f.bob.ID])
	assert.Equal(t, f.alice.ID, f.notifier.created[f.carol.ID])
}

func TestProcessDeduplicatesAndDropsUnknown(t *testing.T) {
	f := newPipelineFixture(t, Config{})

	result, err := f.run(t, f.alice, "hey @bob and @bob check this @unknown_user")
	require.NoError(t, err)

	assert.Equal(t, 1, result.MentionsProcessed)
	assert.Equal(t, []string{"bob"}, result.Mentions)
	assert.Len(t, f.notifier.created, 1)
}

func TestProcessSelfMentionExcluded(t *testing.T) {
	f := newPipelineFixture(t, Config{})

	result, err := f.run(t, f.alice, "note to self: @alice remember this")
	require.NoError(t, err)

	assert.Zero(t, result.MentionsProcessed)
	assert.Empty(t, result.Mentions)
	assert.NotEmpty(t, result.Warning)
	assert.Empty(t, f.notifier.created)
}

func TestProcessSelfAmongOthers(t *testing.T) {
	f := newPipelineFixture(t, Config{})

	result, err := f.run(t, f.alice, "@alice @bob shipping today")
	require.NoError(t, err)

	assert.Equal(t, 1, result.MentionsProcessed)
	assert.Equal(t, []string{"bob"}, result.Mentions)
}

func TestProcessPartialFanout(t *testing.T) {
	f := newPipelineFixture(t, Config{})
	f.notifier.failFor[f.carol.ID] = errors.New("insert failed")

	result, err := f.run(t, f.alice, "@bob @carol big news")
	require.NoError(t, err, "partial fan-out must not fail the submission")

	assert.Equal(t, 1, result.MentionsProcessed)
	assert.Equal(t, []string{"bob"}, result.Mentions)
	assert.NotEmpty(t, result.Warning)
	assert.Contains(t, f.notifier.created, f.bob.ID)
	assert.NotContains(t, f.notifier.created, f.carol.ID)
}

func TestProcessNoCandidates(t *testing.T) {
	f := newPipelineFixture(t, Config{})

	result, err := f.processor.Process(context.Background(), Submission{
		AuthorID:    f.alice.ID,
		Text:        "plain text",
		ContentID:   uuid.New(),
		ContentKind: "comment",
	}, nil)
	require.NoError(t, err)

	assert.Zero(t, result.MentionsProcessed)
	assert.Empty(t, result.Mentions)
	assert.Empty(t, result.Warning)
	assert.Zero(t, f.directory.lookups)
}

func TestPipelineCooldownAcrossSubmissions(t *testing.T) {
	f := newPipelineFixture(t, Config{Cooldown: 30 * time.Second})

	_, err := f.run(t, f.alice, "first shout to @bob")
	require.NoError(t, err)

	f.clock.Advance(10 * time.Second)
	_, err = f.run(t, f.alice, "second shout to @carol")
	var tooSoon *TooSoonError
	require.ErrorAs(t, err, &tooSoon)
	assert.Equal(t, 20*time.Second, tooSoon.Remaining)
	assert.NotContains(t, f.notifier.created, f.carol.ID, "rejected submission must not notify")

	f.clock.Advance(25 * time.Second)
	result, err := f.run(t, f.alice, "second shout to @carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, result.Mentions)
}

func TestPipelineThrottleDisabled(t *testing.T) {
	f := newPipelineFixture(t, Config{ThrottleDisabled: true})

	for i := 0; i < 3; i++ {
		result, err := f.run(t, f.alice, "rapid fire @bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, result.Mentions)
	}
	assert.Empty(t, f.store.calls)
}

func TestPipelineFoldCase(t *testing.T) {
	f := newPipelineFixture(t, Config{FoldCase: true})

	result, err := f.run(t, f.alice, "hi @Bob and @BOB")
	require.NoError(t, err)

	assert.Equal(t, 1, result.MentionsProcessed)
	assert.Equal(t, []string{"bob"}, result.Mentions)
}

func TestPipelineCaseSensitiveByDefault(t *testing.T) {
	f := newPipelineFixture(t, Config{})

	result, err := f.run(t, f.alice, "hi @Bob")
	require.NoError(t, err)

	assert.Zero(t, result.MentionsProcessed, "resolution is an exact match unless folding is enabled")
}
