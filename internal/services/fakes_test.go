package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	"github.com/yungbote/scandine-backend/internal/data/repos/testutil"
	"github.com/yungbote/scandine-backend/internal/platform/gcp"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucket() *fakeBucket { return &fakeBucket{objects: map[string][]byte{}} }

func objectID(cat gcp.BucketCategory, key string) string { return string(cat) + "/" + key }

func (b *fakeBucket) UploadFile(_ context.Context, cat gcp.BucketCategory, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectID(cat, key)] = data
	return nil
}

func (b *fakeBucket) DeleteFile(_ context.Context, cat gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := objectID(cat, key)
	if _, ok := b.objects[id]; !ok {
		return gcp.ErrObjectNotFound
	}
	delete(b.objects, id)
	return nil
}

func (b *fakeBucket) ListKeys(_ context.Context, cat gcp.BucketCategory, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	p := objectID(cat, prefix)
	for id := range b.objects {
		if strings.HasPrefix(id, p) {
			out = append(out, strings.TrimPrefix(id, string(cat)+"/"))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (b *fakeBucket) DeletePrefix(ctx context.Context, cat gcp.BucketCategory, prefix string) error {
	keys, _ := b.ListKeys(ctx, cat, prefix)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.objects, objectID(cat, k))
	}
	return nil
}

func (b *fakeBucket) GetPublicURL(cat gcp.BucketCategory, key string) string {
	return "https://cdn.test/" + string(cat) + "/" + key
}

func (b *fakeBucket) Close() error { return nil }

func (b *fakeBucket) has(cat gcp.BucketCategory, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[objectID(cat, key)]
	return ok
}

func (b *fakeBucket) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Email
}

func (m *fakeMailer) Send(_ context.Context, msg Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) last() (Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Email{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, val []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	c.sets++
}

func (c *memCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

func (c *memCache) Close() error { return nil }

type recordingInvalidator struct {
	mu    sync.Mutex
	shops []uuid.UUID
}

func (r *recordingInvalidator) InvalidateShop(_ context.Context, shopID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shops = append(r.shops, shopID)
}

func (r *recordingInvalidator) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shops)
}

// fixedClock returns a Clock pinned to *t so tests can move time forward.
func fixedClock(t *time.Time) Clock { return func() time.Time { return *t } }

type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	users     repos.UserRepo
	tokens    repos.UserTokenRepo
	resets    repos.PasswordResetRepo
	shops     repos.ShopRepo
	shopUsers repos.ShopUserRepo
	settings  repos.ShopSettingsRepo
	cats      repos.CategoryRepo
	products  repos.ProductRepo
	invites   repos.InviteRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	return &testEnv{
		db:        db,
		log:       log,
		users:     repos.NewUserRepo(db, log),
		tokens:    repos.NewUserTokenRepo(db, log),
		resets:    repos.NewPasswordResetRepo(db, log),
		shops:     repos.NewShopRepo(db, log),
		shopUsers: repos.NewShopUserRepo(db, log),
		settings:  repos.NewShopSettingsRepo(db, log),
		cats:      repos.NewCategoryRepo(db, log),
		products:  repos.NewProductRepo(db, log),
		invites:   repos.NewInviteRepo(db, log),
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
