package apps

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type post struct {
	ID        int64
	Title     string
	CreatedAt time.Time
}

type slugged struct {
	Slug string `gorm:"primaryKey"`
}

type timestamped struct {
	CreatedAt time.Time
}

type relabeled struct {
	ID int
}

type keyless struct {
	Name string
}

func TestDeclare(t *testing.T) {
	a := New("blog")

	models, err := a.Declare("blog", post{}, &slugged{}, Abstract(reflect.TypeOf(timestamped{})))
	require.NoError(t, err)
	require.Len(t, models, 3)

	p := models[0]
	assert.Equal(t, "blog", p.AppLabel())
	assert.Equal(t, "post", p.ModelName())
	assert.Equal(t, "post", p.Name())
	assert.Equal(t, "blog.post", p.String())
	assert.Equal(t, "posts", p.Table())
	assert.False(t, p.Abstract())
	assert.Equal(t, reflect.TypeOf(post{}), p.Type())

	assert.Equal(t, "blog.slugged", models[1].String())
	assert.True(t, models[2].Abstract())
}

func TestDeclare_OptionsOverrideLabel(t *testing.T) {
	a := New()

	models, err := a.Declare("blog", With(relabeled{}, Options{AppLabel: "news", ModelName: "Story"}))
	require.NoError(t, err)
	assert.Equal(t, "news.story", models[0].String())

	m, err := a.Resolve("news", "Story")
	require.NoError(t, err)
	assert.Same(t, models[0], m)
}

func TestDeclare_Idempotent(t *testing.T) {
	a := New()

	first, err := a.Declare("blog", post{})
	require.NoError(t, err)
	second, err := a.Declare("blog", &post{})
	require.NoError(t, err)

	assert.Same(t, first[0], second[0])
	assert.Len(t, a.Models(), 1)
}

func TestDeclare_Errors(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		value   any
		wantErr error
	}{
		{name: "string value", label: "blog", value: "blog.post", wantErr: ErrNotModel},
		{name: "nil value", label: "blog", value: nil, wantErr: ErrNotModel},
		{name: "map value", label: "blog", value: map[string]int{}, wantErr: ErrNotModel},
		{name: "empty app label", label: "", value: post{}, wantErr: ErrInvalidLabel},
		{name: "dotted app label", label: "a.b", value: post{}, wantErr: ErrInvalidLabel},
		{name: "wrapped non-struct", label: "blog", value: Abstract(3), wantErr: ErrNotModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Declare(tt.label, tt.value)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type otherPost struct {
	ID int64
}

func TestDeclare_Conflict(t *testing.T) {
	a := New()
	_, err := a.Declare("blog", post{})
	require.NoError(t, err)

	_, err = a.Declare("blog", With(otherPost{}, Options{ModelName: "post"}))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestResolve(t *testing.T) {
	a := New("blog")
	models, err := a.Declare("blog", post{})
	require.NoError(t, err)

	m, err := a.Resolve("blog", "Post")
	require.NoError(t, err)
	assert.Same(t, models[0], m)

	_, err = a.Resolve("blog", "comment")
	assert.ErrorIs(t, err, ErrLookup)

	_, err = a.Resolve("shop", "post")
	assert.ErrorIs(t, err, ErrLookup)
}

func TestModelOf(t *testing.T) {
	a := New()
	models, err := a.Declare("blog", post{})
	require.NoError(t, err)
	p := models[0]

	for _, v := range []any{p, post{}, &post{ID: 3}, reflect.TypeOf(post{}), reflect.TypeOf(&post{})} {
		m, ok := a.ModelOf(v)
		assert.True(t, ok, "%T", v)
		assert.Same(t, p, m)
	}

	var nilModel *Model
	for _, v := range []any{nil, nilModel, "blog.post", 42, slugged{}} {
		_, ok := a.ModelOf(v)
		assert.False(t, ok, "%T", v)
	}
}

func TestInstalled(t *testing.T) {
	a := New("auth")
	assert.True(t, a.Installed("auth"))
	assert.False(t, a.Installed("blog"))

	a.Install("blog", "auth")
	assert.True(t, a.Installed("blog"))
	assert.Equal(t, []string{"auth", "blog"}, a.InstalledApps())
}

func TestModels_Sorted(t *testing.T) {
	a := New()
	_, err := a.Declare("blog", slugged{}, post{})
	require.NoError(t, err)
	_, err = a.Declare("auth", keyless{})
	require.NoError(t, err)

	var labels []string
	for _, m := range a.Models() {
		labels = append(labels, m.String())
	}
	assert.Equal(t, []string{"auth.keyless", "blog.post", "blog.slugged"}, labels)
}

func TestPrimaryKey(t *testing.T) {
	ctx := context.Background()
	a := New()
	models, err := a.Declare("blog", post{}, slugged{}, keyless{})
	require.NoError(t, err)
	p, s, k := models[0], models[1], models[2]

	got, err := p.PrimaryKey(ctx, &post{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	got, err = p.PrimaryKey(ctx, post{ID: 7})
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	got, err = s.PrimaryKey(ctx, &slugged{Slug: "hello-world"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", got)

	_, err = p.PrimaryKey(ctx, &post{})
	assert.ErrorIs(t, err, ErrUnsaved)

	_, err = p.PrimaryKey(ctx, &slugged{Slug: "x"})
	assert.ErrorIs(t, err, ErrNotModel)

	var nilPost *post
	_, err = p.PrimaryKey(ctx, nilPost)
	assert.ErrorIs(t, err, ErrNotModel)

	_, err = k.PrimaryKey(ctx, &keyless{Name: "x"})
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	a := New()
	models, err := a.Declare("blog", post{}, slugged{}, keyless{})
	require.NoError(t, err)

	obj, err := models[0].New(ctx, "42")
	require.NoError(t, err)
	require.IsType(t, &post{}, obj)
	assert.Equal(t, int64(42), obj.(*post).ID)

	obj, err = models[1].New(ctx, "intro")
	require.NoError(t, err)
	assert.Equal(t, "intro", obj.(*slugged).Slug)

	_, err = models[0].New(ctx, "not-a-number")
	assert.Error(t, err)

	_, err = models[2].New(ctx, "1")
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
}

func TestParseLabel(t *testing.T) {
	app, model, err := ParseLabel("blog.Post")
	require.NoError(t, err)
	assert.Equal(t, "blog", app)
	assert.Equal(t, "Post", model)

	for _, bad := range []string{"", "blog", ".post", "blog.", "a.b.c"} {
		_, _, err := ParseLabel(bad)
		assert.ErrorIs(t, err, ErrLookup, bad)
		assert.ErrorIs(t, err, ErrInvalidLabel, bad)
	}
}
