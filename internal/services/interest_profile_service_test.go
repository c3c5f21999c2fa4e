package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/glimpse-social/glimpse-backend/internal/logger"
	"github.com/glimpse-social/glimpse-backend/internal/types"
)

func profileServiceUnderTest(ai *fakeAIClient) (InterestProfileService, *fakeInterestProfileRepo, *fakeUserRepo, *fakeMomentRepo) {
	profiles := newFakeInterestProfileRepo()
	users := newFakeUserRepo()
	moments := newFakeMomentRepo()
	svc := NewInterestProfileService(nil, logger.NewNop(), profiles, users, moments, ai)
	return svc, profiles, users, moments
}

func seedUser(users *fakeUserRepo, bio string) uuid.UUID {
	id := uuid.New()
	users.rows[id] = &types.User{ID: id, DisplayName: "casey", Bio: bio}
	return id
}

func TestGenerateProfileSkipsUsersWithNoSignal(t *testing.T) {
	ai := &fakeAIClient{}
	svc, profiles, users, _ := profileServiceUnderTest(ai)
	userID := seedUser(users, "")

	svc.GenerateAndStoreInterestProfile(context.Background(), userID)

	if ai.textCalls != 0 || profiles.upserts != 0 {
		t.Fatalf("empty bio and captions still generated: textCalls=%d upserts=%d", ai.textCalls, profiles.upserts)
	}
	if _, ok := svc.GetStoredInterests(context.Background(), userID); ok {
		t.Fatal("no profile should be stored")
	}
}

func TestGenerateProfileSkipsUnknownUser(t *testing.T) {
	ai := &fakeAIClient{}
	svc, profiles, _, _ := profileServiceUnderTest(ai)

	svc.GenerateAndStoreInterestProfile(context.Background(), uuid.New())
	svc.GenerateAndStoreInterestProfile(context.Background(), uuid.Nil)

	if ai.textCalls != 0 || profiles.upserts != 0 {
		t.Fatalf("missing user still generated: textCalls=%d upserts=%d", ai.textCalls, profiles.upserts)
	}
}

func TestGenerateProfileHashShortCircuit(t *testing.T) {
	ai := &fakeAIClient{}
	svc, profiles, users, moments := profileServiceUnderTest(ai)
	userID := seedUser(users, "amateur astronomer")
	moments.captions[userID] = []string{"jupiter through the 8-inch", "clear skies tonight"}

	svc.GenerateAndStoreInterestProfile(context.Background(), userID)
	if ai.textCalls != 1 || profiles.upserts != 1 {
		t.Fatalf("first generation: textCalls=%d upserts=%d", ai.textCalls, profiles.upserts)
	}

	// Same bio and captions: the stored hash matches, no second LLM call.
	svc.GenerateAndStoreInterestProfile(context.Background(), userID)
	if ai.textCalls != 1 || profiles.upserts != 1 {
		t.Fatalf("unchanged inputs regenerated: textCalls=%d upserts=%d", ai.textCalls, profiles.upserts)
	}

	moments.captions[userID] = append(moments.captions[userID], "first try at astrophotography")
	svc.GenerateAndStoreInterestProfile(context.Background(), userID)
	if ai.textCalls != 2 || profiles.upserts != 2 {
		t.Fatalf("changed captions not regenerated: textCalls=%d upserts=%d", ai.textCalls, profiles.upserts)
	}
}

func TestGenerateProfileKeepsStoredTextOnFailure(t *testing.T) {
	ai := &fakeAIClient{}
	svc, _, users, moments := profileServiceUnderTest(ai)
	userID := seedUser(users, "urban cyclist")
	moments.captions[userID] = []string{"morning commute"}

	svc.GenerateAndStoreInterestProfile(context.Background(), userID)
	stored, ok := svc.GetStoredInterests(context.Background(), userID)
	if !ok {
		t.Fatal("seed generation failed")
	}

	ai.textFn = func(_, _ string) (string, error) {
		return "", errors.New("upstream unavailable")
	}
	moments.captions[userID] = append(moments.captions[userID], "flat tire again")
	svc.GenerateAndStoreInterestProfile(context.Background(), userID)

	got, ok := svc.GetStoredInterests(context.Background(), userID)
	if !ok || got != stored {
		t.Fatalf("failed regeneration disturbed stored text: got %q ok=%v", got, ok)
	}
}

func TestGenerateProfilePromptCarriesBioAndCaptions(t *testing.T) {
	ai := &fakeAIClient{}
	svc, _, users, moments := profileServiceUnderTest(ai)
	userID := seedUser(users, "home barista")
	moments.captions[userID] = []string{"dialing in the grinder"}

	svc.GenerateAndStoreInterestProfile(context.Background(), userID)

	ai.mu.Lock()
	prompt := ai.lastUserInput
	ai.mu.Unlock()
	for _, want := range []string{"home barista", "dialing in the grinder"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestGetStoredInterestsMissingOrEmpty(t *testing.T) {
	ai := &fakeAIClient{}
	svc, profiles, _, _ := profileServiceUnderTest(ai)
	userID := uuid.New()

	if _, ok := svc.GetStoredInterests(context.Background(), userID); ok {
		t.Fatal("missing row must report false")
	}

	profiles.rows[userID] = &types.InterestProfile{UserID: userID, InterestText: ""}
	if _, ok := svc.GetStoredInterests(context.Background(), userID); ok {
		t.Fatal("empty stored text must report false")
	}
}
