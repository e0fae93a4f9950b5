package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	accountStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/account"
	eventStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/event"
	groupStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/group"
	leidingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/leiding"
	postStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/post"
	settingStore "github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/setting"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage/storagetest"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/group"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

var fixedNow = time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// fixture wires every store to one in-memory database and the object store to memory.
type fixture struct {
	leiding  *leidingStore.SQLStore
	groups   *groupStore.SQLStore
	events   *eventStore.SQLStore
	posts    *postStore.SQLStore
	settings *settingStore.SQLStore
	accounts *accountStore.SQLStore
	fs       afero.Fs
	objects  *objectstore.Store
	seq      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storagetest.Open(t)
	fs := afero.NewMemMapFs()
	f := &fixture{
		leiding:  leidingStore.NewSQLStore(db),
		groups:   groupStore.NewSQLStore(db),
		events:   eventStore.NewSQLStore(db),
		posts:    postStore.NewSQLStore(db),
		settings: settingStore.NewSQLStore(db),
		accounts: accountStore.NewSQLStore(db),
		fs:       fs,
		objects:  objectstore.New(fs, ""),
	}
	ctx := context.Background()
	for _, name := range []string{"Leeuwkes", "Jongknapen"} {
		_, err := f.groups.Create(ctx, group.Group{Name: name, Active: true})
		require.NoError(t, err)
	}
	require.NoError(t, f.settings.EnsureDefaults(ctx, setting.DefaultSettings()))
	return f
}

// genID returns "obj-1", "obj-2", ...
func (f *fixture) genID() string {
	f.seq++
	return fmt.Sprintf("obj-%d", f.seq)
}

// exists reports whether the object behind a public URL is stored.
func (f *fixture) exists(t *testing.T, bucket, url string) bool {
	t.Helper()
	key, err := objectstore.KeyFromURL(bucket, url)
	require.NoError(t, err)
	ok, err := f.objects.Exists(bucket, key)
	require.NoError(t, err)
	return ok
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 249, G: 178, B: 50, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
