package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/kv"
	"budget/internal/kv/memory"
	"budget/internal/log"
	"budget/internal/persist"
)

type recordingSaver struct {
	saves []core.Settings
}

func (r *recordingSaver) Save(_ string, value any) error {
	r.saves = append(r.saves, value.(core.Settings))
	return nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("storage unavailable")
}
func (failingStore) Set(context.Context, string, []byte) error { return nil }

func loaded(t *testing.T, store kv.Store) (*Store, *recordingSaver) {
	t.Helper()
	saver := &recordingSaver{}
	s := New(saver, log.Discard())
	require.NoError(t, s.Load(context.Background(), store))
	return s, saver
}

func TestStateMachine(t *testing.T) {
	s := New(&recordingSaver{}, log.Discard())
	assert.Equal(t, Loading, s.State())
	assert.True(t, s.Loading())

	require.NoError(t, s.Load(context.Background(), memory.New()))
	assert.Equal(t, NotOnboarded, s.State())
	assert.False(t, s.Loading())

	_, err := s.CompleteOnboarding(core.Profile{Name: "Rakoto", FirstName: "Be", Language: core.LanguageMalagasy, Currency: core.CurrencyAriary})
	require.NoError(t, err)
	assert.Equal(t, Onboarded, s.State())

	_, err = s.CompleteOnboarding(core.Profile{Name: "Other"})
	assert.ErrorIs(t, err, ErrAlreadyOnboarded)
	assert.Equal(t, "Rakoto", s.Settings().Name)
}

func TestLoadOnlyOnce(t *testing.T) {
	s, _ := loaded(t, memory.New())
	assert.ErrorIs(t, s.Load(context.Background(), memory.New()), ErrAlreadyLoaded)
}

func TestLoadDefaultsWhenMissingOrBroken(t *testing.T) {
	s, _ := loaded(t, memory.New())
	assert.Equal(t, core.DefaultSettings(), s.Settings())

	s, _ = loaded(t, failingStore{})
	assert.Equal(t, core.DefaultSettings(), s.Settings())
	assert.Equal(t, NotOnboarded, s.State())

	s, _ = loaded(t, memory.NewWithItems(map[string][]byte{kv.KeySettings: []byte(`{broken`)}))
	assert.Equal(t, core.DefaultSettings(), s.Settings())
}

func TestLoadMergesStoredOverDefaults(t *testing.T) {
	store := memory.NewWithItems(map[string][]byte{
		kv.KeySettings: []byte(`{"name":"Rakoto","isOnboarded":true,"currency":"EUR"}`),
	})
	s, _ := loaded(t, store)
	got := s.Settings()
	assert.Equal(t, "Rakoto", got.Name)
	assert.Equal(t, core.CurrencyEuro, got.Currency)
	assert.Equal(t, core.LanguageFrench, got.Language)
	assert.Equal(t, core.ThemeSystem, got.Theme)
	assert.Equal(t, Onboarded, s.State())
}

func TestUpdatePersistsFullRecord(t *testing.T) {
	s, saver := loaded(t, memory.New())
	fund := decimal.NewFromInt(500)
	lang := core.Language("xx")

	got := s.Update(core.SettingsPatch{PrincipalFund: &fund, Language: &lang})
	assert.True(t, got.PrincipalFund.Equal(fund))
	assert.Equal(t, lang, got.Language, "no enum validation at this layer")
	assert.True(t, s.PrincipalFund().Equal(fund))

	require.Len(t, saver.saves, 1)
	assert.Equal(t, core.CurrencyAriary, saver.saves[0].Currency)
	assert.True(t, saver.saves[0].PrincipalFund.Equal(fund))
}

func TestPrincipalFundStoredAsNumber(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := persist.New(store, persist.Config{}, log.Discard())
	s := New(w, log.Discard())
	require.NoError(t, s.Load(ctx, store))

	fund := decimal.NewFromInt(500)
	s.Update(core.SettingsPatch{PrincipalFund: &fund})
	require.NoError(t, w.Close(ctx))

	raw, found, err := store.Get(ctx, kv.KeySettings)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(raw), `"principalFund":500`)

	next, _ := loaded(t, store)
	assert.True(t, next.PrincipalFund().Equal(fund))
}

func TestToggleTheme(t *testing.T) {
	s, _ := loaded(t, memory.New())
	assert.Equal(t, core.ThemeLight, s.ToggleTheme())
	assert.Equal(t, core.ThemeDark, s.ToggleTheme())
	assert.Equal(t, core.ThemeLight, s.ToggleTheme())
}

func TestCompleteOnboardingIsOneUpdate(t *testing.T) {
	s, saver := loaded(t, memory.New())
	got, err := s.CompleteOnboarding(core.Profile{Name: "Müller", FirstName: "Anna", Language: core.LanguageGerman, Currency: core.CurrencyEuro})
	require.NoError(t, err)

	require.Len(t, saver.saves, 1)
	assert.True(t, got.IsOnboarded)
	assert.Equal(t, core.ThemeLight, got.Theme)
	assert.Equal(t, "Deutschland", got.Region)
	assert.Equal(t, "Deutsch", got.Nationality)
	assert.Equal(t, got, saver.saves[0])
}

func TestSaveProfileKeepsGate(t *testing.T) {
	s, _ := loaded(t, memory.New())
	got := s.SaveProfile(core.Profile{Name: "Smith", Language: core.LanguageEnglish, Currency: core.CurrencyDollar})
	assert.False(t, got.IsOnboarded)
	assert.Equal(t, core.ThemeSystem, got.Theme)
	assert.Equal(t, "International", got.Region)
}

func TestOnboardingSurvivesNewSession(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := persist.New(store, persist.Config{}, log.Discard())

	first := New(w, log.Discard())
	require.NoError(t, first.Load(ctx, store))
	require.Equal(t, NotOnboarded, first.State())
	_, err := first.CompleteOnboarding(core.Profile{Name: "Rakoto", Language: core.LanguageMalagasy, Currency: core.CurrencyAriary})
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	second := New(&recordingSaver{}, log.Discard())
	require.NoError(t, second.Load(ctx, store))
	assert.Equal(t, Onboarded, second.State())
	assert.Equal(t, "Madagascar", second.Settings().Region)
}
