package keygraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_ProjectBindingAndDefault(t *testing.T) {
	nameKey := NewKeyWithDefault("name", "project name", "unnamed")
	versionKey := NewKey("version", "project version")

	proj := NewProject("demo", "")
	require.NoError(t, proj.Set(versionKey, func(*Scope) (any, error) { return "1.0.0", nil }))
	proj.Lock()

	scope := BaseScope(proj)
	ev := NewEvaluator()

	v, err := ev.Evaluate(context.Background(), scope, versionKey)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)

	v, err = ev.Evaluate(context.Background(), scope, nameKey)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", v)
}

func TestEvaluate_KeyNotAssigned(t *testing.T) {
	proj := NewProject("demo", "")
	proj.Lock()
	scope := BaseScope(proj)
	ev := NewEvaluator()

	_, err := ev.Evaluate(context.Background(), scope, NewKey("missing", ""))
	assert.ErrorIs(t, err, ErrKeyNotAssigned)
}

func TestEvaluate_ConfigurationShadowsProject(t *testing.T) {
	sourcesKey := NewKey("sources", "")
	proj := NewProject("demo", "")
	require.NoError(t, proj.Set(sourcesKey, func(*Scope) (any, error) { return "src/main", nil }))
	proj.Lock()

	compile := NewConfiguration("compile", nil)
	require.NoError(t, compile.Set(sourcesKey, func(*Scope) (any, error) { return "src/compile", nil }))
	compile.Lock()

	ev := NewEvaluator()
	base := BaseScope(proj)
	layered := ev.Layer(base, compile)

	v, err := ev.Evaluate(context.Background(), layered, sourcesKey)
	require.NoError(t, err)
	assert.Equal(t, "src/compile", v)

	// The project's own binding is still reachable directly on the base scope.
	v, err = ev.Evaluate(context.Background(), base, sourcesKey)
	require.NoError(t, err)
	assert.Equal(t, "src/main", v)
}

func TestEvaluate_ModifierOrderingOutermostLast(t *testing.T) {
	key := NewKeyWithDefault("flags", "", "base")
	proj := NewProject("demo", "")
	require.NoError(t, proj.Modify(key, func(_ *Scope, v any) (any, error) {
		return v.(string) + "+project", nil
	}))
	proj.Lock()

	compile := NewConfiguration("compile", nil)
	require.NoError(t, compile.Modify(key, func(_ *Scope, v any) (any, error) {
		return v.(string) + "+compile-a", nil
	}))
	require.NoError(t, compile.Modify(key, func(_ *Scope, v any) (any, error) {
		return v.(string) + "+compile-b", nil
	}))
	compile.Lock()

	ev := NewEvaluator()
	layered := ev.Layer(BaseScope(proj), compile)

	v, err := ev.Evaluate(context.Background(), layered, key)
	require.NoError(t, err)
	// project's modifier is less significant (collected later in the
	// outward walk from compile) so it runs first; compile's own
	// modifiers run afterwards in declaration order.
	assert.Equal(t, "base+project+compile-a+compile-b", v)
}

func TestEvaluate_ConfigurationExtensionInsertedAboveTarget(t *testing.T) {
	key := NewKey("classpath", "")
	runtime := NewConfiguration("runtime", nil)
	require.NoError(t, runtime.Set(key, func(*Scope) (any, error) { return "runtime-cp", nil }))
	runtime.Lock()

	compile := NewConfiguration("compile", nil)
	ext := NewConfigurationExtension("compile-extends-runtime", "runtime")
	require.NoError(t, ext.Set(key, func(*Scope) (any, error) { return "compile-extends-runtime-cp", nil }))
	ext.Lock()
	require.NoError(t, compile.Extend(ext))
	compile.Lock()

	proj := NewProject("demo", "")
	proj.Lock()

	ev := NewEvaluator()
	base := BaseScope(proj)
	withRuntime := ev.Layer(base, runtime)
	withCompile := ev.Layer(withRuntime, compile)

	v, err := ev.Evaluate(context.Background(), withCompile, key)
	require.NoError(t, err)
	assert.Equal(t, "compile-extends-runtime-cp", v)
}

// TestLayer_ExtensionOutranksTargetOnlyWhenDeclaredOnAnAlreadyLayeredHolder
// reproduces spec.md §8 scenario 6: key color bound to "Red" in project
// P, "White" in configuration arctic, "Rainbow" in configuration
// wonderland, and extended to "Transparent" inside wonderland when
// targeting arctic. All five query variants from that scenario must
// match exactly.
func TestLayer_ExtensionOutranksTargetOnlyWhenDeclaredOnAnAlreadyLayeredHolder(t *testing.T) {
	key := NewKey("color", "")

	proj := NewProject("demo", "")
	require.NoError(t, proj.Set(key, func(*Scope) (any, error) { return "Red", nil }))
	proj.Lock()

	arctic := NewConfiguration("arctic", nil)
	require.NoError(t, arctic.Set(key, func(*Scope) (any, error) { return "White", nil }))

	wonderland := NewConfiguration("wonderland", nil)
	require.NoError(t, wonderland.Set(key, func(*Scope) (any, error) { return "Rainbow", nil }))
	ext := NewConfigurationExtension("wonderland-extends-arctic", "arctic")
	require.NoError(t, ext.Set(key, func(*Scope) (any, error) { return "Transparent", nil }))
	ext.Lock()
	require.NoError(t, wonderland.Extend(ext))

	arctic.Lock()
	wonderland.Lock()

	ev := NewEvaluator()
	base := BaseScope(proj)
	ctx := context.Background()

	v, err := ev.Evaluate(ctx, base, key)
	require.NoError(t, err)
	assert.Equal(t, "Red", v, "P / color")

	withArctic := ev.Layer(base, arctic)
	v, err = ev.Evaluate(ctx, withArctic, key)
	require.NoError(t, err)
	assert.Equal(t, "White", v, "P / arctic : color")

	withWonderland := ev.Layer(base, wonderland)
	v, err = ev.Evaluate(ctx, withWonderland, key)
	require.NoError(t, err)
	assert.Equal(t, "Rainbow", v, "P / wonderland : color")

	wonderlandThenArctic := ev.Layer(withWonderland, arctic)
	v, err = ev.Evaluate(ctx, wonderlandThenArctic, key)
	require.NoError(t, err)
	assert.Equal(t, "Transparent", v, "P / wonderland : arctic : color")

	arcticThenWonderland := ev.Layer(withArctic, wonderland)
	v, err = ev.Evaluate(ctx, arcticThenWonderland, key)
	require.NoError(t, err)
	assert.Equal(t, "Rainbow", v, "P / arctic : wonderland : color")
}

func TestLayer_IsMemoizedForSamePair(t *testing.T) {
	proj := NewProject("demo", "")
	proj.Lock()
	compile := NewConfiguration("compile", nil)
	compile.Lock()

	ev := NewEvaluator()
	base := BaseScope(proj)
	first := ev.Layer(base, compile)
	second := ev.Layer(base, compile)
	assert.Same(t, first, second)
}

func TestEvaluate_ConcurrentEvaluationRejected(t *testing.T) {
	proj := NewProject("demo", "")
	proj.Lock()
	ev := NewEvaluator()
	ev.active = &activation{depth: 1}

	_, err := ev.Evaluate(context.Background(), BaseScope(proj), NewKey("x", ""))
	assert.ErrorIs(t, err, ErrConcurrentEvaluation)
}

func TestLazyStaticCache_MemoizesFirstResult(t *testing.T) {
	calls := 0
	cache := &LazyStaticCache{}
	fn := cache.Wrap(func(*Scope) (any, error) {
		calls++
		return calls, nil
	})

	v1, err := fn(nil)
	require.NoError(t, err)
	v2, err := fn(nil)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestInputCache_RecomputesOnFingerprintChange(t *testing.T) {
	calls := 0
	gen := 0
	cache := NewInputCache(func(*Scope) Fingerprint {
		return Fingerprint{"gen": int64(gen)}
	})
	fn := cache.Wrap(func(*Scope) (any, error) {
		calls++
		return calls, nil
	})

	v1, _ := fn(nil)
	v2, _ := fn(nil)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)

	gen = 1
	v3, _ := fn(nil)
	assert.NotEqual(t, v1, v3)
	assert.Equal(t, 2, calls)
}
