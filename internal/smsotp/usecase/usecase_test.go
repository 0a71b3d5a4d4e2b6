package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
	"github.com/shandysiswandi/textotp/internal/pkg/instrument"
	"github.com/shandysiswandi/textotp/internal/pkg/jwt"
	"github.com/shandysiswandi/textotp/internal/pkg/otp"
	"github.com/shandysiswandi/textotp/internal/pkg/validator"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

const (
	testUserID   = int64(7)
	testDeviceID = int64(100)

	// hex of the ASCII bytes "01234567890123456789"
	testKey = "3031323334353637383930313233343536373839"
)

var testEpoch = time.Unix(1420099200, 0).UTC()

type fakeRepoDB struct {
	devices map[int64]*entity.Device

	createErr  error
	getErr     error
	advanceErr error
	casFail    bool

	created []entity.Device
	updated []entity.UpdateDevice
	deleted []int64
}

func (f *fakeRepoDB) CreateDevice(_ context.Context, d entity.Device) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, d)
	return nil
}

func (f *fakeRepoDB) GetDeviceByID(_ context.Context, id int64) (*entity.Device, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.devices[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepoDB) ListDevicesByUser(_ context.Context, userID int64) ([]entity.Device, error) {
	var out []entity.Device
	for _, d := range f.devices {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepoDB) UpdateDevice(_ context.Context, in entity.UpdateDevice) error {
	f.updated = append(f.updated, in)
	return nil
}

func (f *fakeRepoDB) DeleteDevice(_ context.Context, id, _ int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepoDB) AdvanceDeviceStep(_ context.Context, id, fromStep, toStep int64) (bool, error) {
	if f.advanceErr != nil {
		return false, f.advanceErr
	}
	if f.casFail {
		return false, nil
	}
	d, ok := f.devices[id]
	if !ok || d.LastStep != fromStep {
		return false, nil
	}
	d.LastStep = toStep
	d.Confirmed = true
	return true, nil
}

type fakeRepoCache struct {
	cooled     bool
	acquireErr error
	releases   int
}

func (f *fakeRepoCache) AcquireCooldown(context.Context, int64, time.Duration) (bool, error) {
	return f.cooled, f.acquireErr
}

func (f *fakeRepoCache) ReleaseCooldown(context.Context, int64) error {
	f.releases++
	return nil
}

type sentMessage struct {
	sender  string
	message string
	number  string
	apiKey  string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, sender, message, number, apiKey string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{sender: sender, message: message, number: number, apiKey: apiKey})
	return nil
}

type fixedClock struct{ at time.Time }

func (f *fixedClock) Now() time.Time { return f.at }

type fakeUID struct{ next int64 }

func (f *fakeUID) Generate() int64 {
	f.next++
	return f.next
}

type fixture struct {
	uc     *Usecase
	repo   *fakeRepoDB
	cache  *fakeRepoCache
	sender *fakeSender
	clock  *fixedClock
	engine otp.Engine
}

func newFixture(t *testing.T, settings *entity.Settings) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	if settings == nil {
		settings = &entity.Settings{
			ChallengeMessage: entity.DefaultChallengeMessage,
			Sender:           "ACME",
			TokenTemplate:    entity.TokenPlaceholder,
			TokenValidity:    entity.DefaultTokenValidity,
			URL:              "https://api.example.com/send",
			APIKey:           "provider-key",
		}
	}

	repo := &fakeRepoDB{devices: map[int64]*entity.Device{
		testDeviceID: {
			ID:       testDeviceID,
			UserID:   testUserID,
			Number:   "+15555550100",
			Key:      testKey,
			LastStep: entity.NoStep,
		},
	}}
	cache := &fakeRepoCache{cooled: true}
	sender := &fakeSender{}
	clk := &fixedClock{at: testEpoch}
	engine := otp.NewTOTP(time.Second)

	uc := New(Dependency{
		RepoDB:     repo,
		RepoCache:  cache,
		Sender:     sender,
		Settings:   settings,
		Engine:     engine,
		Validator:  v,
		Clock:      clk,
		UID:        &fakeUID{next: 1000},
		Instrument: instrument.NewNoop(),
	})

	return &fixture{uc: uc, repo: repo, cache: cache, sender: sender, clock: clk, engine: engine}
}

func authCtx() context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: testUserID})
}

func codeAt(t *testing.T, f *fixture, at time.Time) string {
	t.Helper()

	secret, err := f.repo.devices[testDeviceID].BinKey()
	if err != nil {
		t.Fatalf("failed to decode device key: %v", err)
	}
	code, err := f.engine.Code(secret, at, 0)
	if err != nil {
		t.Fatalf("failed to derive code: %v", err)
	}
	return code
}

func TestDeviceEnroll(t *testing.T) {
	t.Run("GeneratesKeyWhenAbsent", func(t *testing.T) {
		// Arrange
		f := newFixture(t, nil)

		// Act
		out, err := f.uc.DeviceEnroll(authCtx(), DeviceEnrollInput{Number: "+15555550100"})

		// Assert
		if err != nil {
			t.Fatalf("DeviceEnroll() error = %v", err)
		}
		if out.ID == 0 {
			t.Fatal("DeviceEnroll() returned zero ID")
		}
		if len(f.repo.created) != 1 {
			t.Fatalf("created %d devices, want 1", len(f.repo.created))
		}
		created := f.repo.created[0]
		if !regexp.MustCompile(`^[0-9a-f]{40}$`).MatchString(created.Key) {
			t.Fatalf("created key = %q, want 40 hex chars", created.Key)
		}
		if created.LastStep != entity.NoStep {
			t.Fatalf("created last step = %d, want %d", created.LastStep, entity.NoStep)
		}
		if created.Confirmed {
			t.Fatal("new device must start unconfirmed")
		}
	})

	t.Run("KeepsSuppliedKey", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.uc.DeviceEnroll(authCtx(), DeviceEnrollInput{Number: "+15555550100", Key: testKey})
		if err != nil {
			t.Fatalf("DeviceEnroll() error = %v", err)
		}

		if f.repo.created[0].Key != testKey {
			t.Fatalf("created key = %q, want %q", f.repo.created[0].Key, testKey)
		}
	})

	t.Run("RejectsBadKey", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.uc.DeviceEnroll(authCtx(), DeviceEnrollInput{Number: "+15555550100", Key: "zz-not-hex"})
		if err == nil {
			t.Fatal("DeviceEnroll() error = nil, want validation error")
		}
	})

	t.Run("RequiresAuthentication", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.uc.DeviceEnroll(context.Background(), DeviceEnrollInput{Number: "+15555550100"})
		if err == nil {
			t.Fatal("DeviceEnroll() error = nil, want unauthorized")
		}
	})
}

func TestDeviceDetail(t *testing.T) {
	t.Run("ReturnsOwnedDevice", func(t *testing.T) {
		f := newFixture(t, nil)

		out, err := f.uc.DeviceDetail(authCtx(), DeviceDetailInput{DeviceID: testDeviceID})
		if err != nil {
			t.Fatalf("DeviceDetail() error = %v", err)
		}
		if out.Device.ID != testDeviceID {
			t.Fatalf("device ID = %d, want %d", out.Device.ID, testDeviceID)
		}
	})

	t.Run("UnknownDeviceIsNotFound", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.uc.DeviceDetail(authCtx(), DeviceDetailInput{DeviceID: 999})
		if err == nil {
			t.Fatal("DeviceDetail() error = nil, want not found")
		}
	})

	t.Run("ForeignDeviceIsNotFound", func(t *testing.T) {
		// Ownership failures are indistinguishable from missing devices.
		f := newFixture(t, nil)
		f.repo.devices[testDeviceID].UserID = testUserID + 1

		_, err := f.uc.DeviceDetail(authCtx(), DeviceDetailInput{DeviceID: testDeviceID})
		if err == nil {
			t.Fatal("DeviceDetail() error = nil, want not found")
		}
	})
}

func TestDeviceUpdate(t *testing.T) {
	t.Run("NothingToUpdate", func(t *testing.T) {
		f := newFixture(t, nil)

		err := f.uc.DeviceUpdate(authCtx(), DeviceUpdateInput{DeviceID: testDeviceID})
		if err == nil {
			t.Fatal("DeviceUpdate() error = nil, want validation error")
		}
	})

	t.Run("UpdatesNumber", func(t *testing.T) {
		f := newFixture(t, nil)
		number := "+15555550199"

		err := f.uc.DeviceUpdate(authCtx(), DeviceUpdateInput{DeviceID: testDeviceID, Number: &number})
		if err != nil {
			t.Fatalf("DeviceUpdate() error = %v", err)
		}

		if len(f.repo.updated) != 1 || *f.repo.updated[0].Number != number {
			t.Fatalf("updated = %+v, want number %q", f.repo.updated, number)
		}
	})
}

func TestDeviceDelete(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.uc.DeviceDelete(authCtx(), DeviceDeleteInput{DeviceID: testDeviceID}); err != nil {
		t.Fatalf("DeviceDelete() error = %v", err)
	}

	if len(f.repo.deleted) != 1 || f.repo.deleted[0] != testDeviceID {
		t.Fatalf("deleted = %v, want [%d]", f.repo.deleted, testDeviceID)
	}
}

func TestChallengeCreate(t *testing.T) {
	t.Run("SendsCurrentToken", func(t *testing.T) {
		// Arrange
		f := newFixture(t, nil)
		want := codeAt(t, f, testEpoch)

		// Act
		out, err := f.uc.ChallengeCreate(authCtx(), ChallengeCreateInput{DeviceID: testDeviceID})

		// Assert
		if err != nil {
			t.Fatalf("ChallengeCreate() error = %v", err)
		}
		if out.Challenge != entity.DefaultChallengeMessage {
			t.Fatalf("challenge = %q, want %q", out.Challenge, entity.DefaultChallengeMessage)
		}
		if len(f.sender.sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(f.sender.sent))
		}
		sent := f.sender.sent[0]
		if sent.message != want {
			t.Fatalf("sent message = %q, want %q", sent.message, want)
		}
		if sent.number != "+15555550100" || sent.sender != "ACME" || sent.apiKey != "provider-key" {
			t.Fatalf("sent = %+v, want device number, configured sender and api key", sent)
		}
	})

	t.Run("TemplatesCarryTheToken", func(t *testing.T) {
		f := newFixture(t, &entity.Settings{
			ChallengeMessage: "Token is " + entity.TokenPlaceholder,
			Sender:           "ACME",
			TokenTemplate:    "Use " + entity.TokenPlaceholder + " to log in",
			TokenValidity:    entity.DefaultTokenValidity,
			URL:              "https://api.example.com/send",
			APIKey:           "provider-key",
		})

		out, err := f.uc.ChallengeCreate(authCtx(), ChallengeCreateInput{DeviceID: testDeviceID})
		if err != nil {
			t.Fatalf("ChallengeCreate() error = %v", err)
		}

		if !regexp.MustCompile(`^Token is \d{6}$`).MatchString(out.Challenge) {
			t.Fatalf("challenge = %q, want templated six digit token", out.Challenge)
		}
		if !regexp.MustCompile(`^Use \d{6} to log in$`).MatchString(f.sender.sent[0].message) {
			t.Fatalf("sent message = %q, want templated six digit token", f.sender.sent[0].message)
		}
	})

	t.Run("NoDeliverySkipsSending", func(t *testing.T) {
		f := newFixture(t, &entity.Settings{
			ChallengeMessage: entity.DefaultChallengeMessage,
			NoDelivery:       true,
			TokenTemplate:    entity.TokenPlaceholder,
			TokenValidity:    entity.DefaultTokenValidity,
		})

		out, err := f.uc.ChallengeCreate(authCtx(), ChallengeCreateInput{DeviceID: testDeviceID})
		if err != nil {
			t.Fatalf("ChallengeCreate() error = %v", err)
		}

		if out.Challenge != entity.DefaultChallengeMessage {
			t.Fatalf("challenge = %q, want %q", out.Challenge, entity.DefaultChallengeMessage)
		}
		if len(f.sender.sent) != 0 {
			t.Fatalf("sent %d messages, want 0", len(f.sender.sent))
		}
	})

	t.Run("MissingSettingsFailBeforeSending", func(t *testing.T) {
		f := newFixture(t, &entity.Settings{
			ChallengeMessage: entity.DefaultChallengeMessage,
			TokenTemplate:    entity.TokenPlaceholder,
			TokenValidity:    entity.DefaultTokenValidity,
		})

		_, err := f.uc.ChallengeCreate(authCtx(), ChallengeCreateInput{DeviceID: testDeviceID})
		if err == nil {
			t.Fatal("ChallengeCreate() error = nil, want configuration error")
		}
		if len(f.sender.sent) != 0 {
			t.Fatalf("sent %d messages, want 0", len(f.sender.sent))
		}
	})

	t.Run("CooldownBlocksRepeatSend", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cache.cooled = false

		_, err := f.uc.ChallengeCreate(authCtx(), ChallengeCreateInput{DeviceID: testDeviceID})
		if err == nil {
			t.Fatal("ChallengeCreate() error = nil, want too many requests")
		}
		if len(f.sender.sent) != 0 {
			t.Fatalf("sent %d messages, want 0", len(f.sender.sent))
		}
	})

	t.Run("CacheOutageStillDelivers", func(t *testing.T) {
		f := newFixture(t, nil)
		f.cache.acquireErr = errors.New("redis down")

		_, err := f.uc.ChallengeCreate(authCtx(), ChallengeCreateInput{DeviceID: testDeviceID})
		if err != nil {
			t.Fatalf("ChallengeCreate() error = %v", err)
		}
		if len(f.sender.sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(f.sender.sent))
		}
	})

	t.Run("DeliveryFailureReleasesCooldown", func(t *testing.T) {
		f := newFixture(t, nil)
		f.sender.err = errors.New("provider rejected")

		_, err := f.uc.ChallengeCreate(authCtx(), ChallengeCreateInput{DeviceID: testDeviceID})
		if err == nil {
			t.Fatal("ChallengeCreate() error = nil, want delivery error")
		}
		if f.cache.releases != 1 {
			t.Fatalf("released cooldown %d times, want 1", f.cache.releases)
		}
	})
}

func TestTokenVerify(t *testing.T) {
	t.Run("AcceptsCodeWithinWindow", func(t *testing.T) {
		// Arrange: code generated now, verified 30 seconds later.
		f := newFixture(t, nil)
		code := codeAt(t, f, testEpoch)
		f.clock.at = testEpoch.Add(30 * time.Second)

		// Act
		out, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: code})

		// Assert
		if err != nil {
			t.Fatalf("TokenVerify() error = %v", err)
		}
		if !out.Verified {
			t.Fatal("Verified = false, want true at the edge of the window")
		}
		if !f.repo.devices[testDeviceID].Confirmed {
			t.Fatal("device must be confirmed after a successful verification")
		}
	})

	t.Run("RejectsCodePastWindow", func(t *testing.T) {
		f := newFixture(t, nil)
		code := codeAt(t, f, testEpoch)
		f.clock.at = testEpoch.Add(31 * time.Second)

		out, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: code})
		if err != nil {
			t.Fatalf("TokenVerify() error = %v", err)
		}

		if out.Verified {
			t.Fatal("Verified = true, want false one second past the window")
		}
	})

	t.Run("RejectsFutureCode", func(t *testing.T) {
		f := newFixture(t, nil)
		code := codeAt(t, f, testEpoch.Add(10*time.Second))
		f.clock.at = testEpoch

		out, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: code})
		if err != nil {
			t.Fatalf("TokenVerify() error = %v", err)
		}

		if out.Verified {
			t.Fatal("a code from a future step must not verify")
		}
	})

	t.Run("RejectsReplay", func(t *testing.T) {
		f := newFixture(t, nil)
		code := codeAt(t, f, testEpoch)

		first, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: code})
		if err != nil || !first.Verified {
			t.Fatalf("first TokenVerify() = (%+v, %v), want verified", first, err)
		}

		second, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: code})
		if err != nil {
			t.Fatalf("second TokenVerify() error = %v", err)
		}
		if second.Verified {
			t.Fatal("Verified = true on replay, want false")
		}
	})

	t.Run("MalformedCodeIsSilentFailure", func(t *testing.T) {
		f := newFixture(t, nil)

		for _, code := range []string{"", "abcdef", "12a456", "-12345", "12345678901"} {
			out, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: code})
			if err != nil {
				t.Fatalf("TokenVerify(%q) error = %v", code, err)
			}
			if out.Verified {
				t.Fatalf("TokenVerify(%q) verified, want false", code)
			}
		}

		if f.repo.devices[testDeviceID].LastStep != entity.NoStep {
			t.Fatal("malformed input must not move the watermark")
		}
	})

	t.Run("RejectsCodeFromAnotherDevice", func(t *testing.T) {
		f := newFixture(t, nil)
		otherKey, err := entity.RandomKey()
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}
		f.repo.devices[200] = &entity.Device{
			ID:       200,
			UserID:   testUserID,
			Number:   "+15555550101",
			Key:      otherKey,
			LastStep: entity.NoStep,
		}
		code := codeAt(t, f, testEpoch)

		out, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: 200, Code: code})
		if err != nil {
			t.Fatalf("TokenVerify() error = %v", err)
		}

		if out.Verified {
			t.Fatal("a code derived from one device's key must not verify on another")
		}
	})

	t.Run("ConcurrentWinnerMakesLoserFail", func(t *testing.T) {
		f := newFixture(t, nil)
		f.repo.casFail = true
		code := codeAt(t, f, testEpoch)

		out, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: code})
		if err != nil {
			t.Fatalf("TokenVerify() error = %v", err)
		}

		if out.Verified {
			t.Fatal("Verified = true after losing the watermark race, want false")
		}
	})

	t.Run("WatermarkNeverMovesBackwards", func(t *testing.T) {
		// Verify the newest code first, then an older one still in the window.
		f := newFixture(t, nil)
		newest := codeAt(t, f, testEpoch)
		older := codeAt(t, f, testEpoch.Add(-10*time.Second))
		f.clock.at = testEpoch

		first, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: newest})
		if err != nil || !first.Verified {
			t.Fatalf("first TokenVerify() = (%+v, %v), want verified", first, err)
		}

		second, err := f.uc.TokenVerify(authCtx(), TokenVerifyInput{DeviceID: testDeviceID, Code: older})
		if err != nil {
			t.Fatalf("second TokenVerify() error = %v", err)
		}
		if second.Verified {
			t.Fatal("an older code must not verify after a newer step was consumed")
		}
	})
}
