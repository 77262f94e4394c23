package elemsel_test

import (
	"testing"

	"github.com/fwojciec/elemsel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrs(kv ...string) []elemsel.Attribute {
	var out []elemsel.Attribute
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, elemsel.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func TestParseSelector(t *testing.T) {
	t.Parallel()

	t.Run("parses compound with every criterion kind", func(t *testing.T) {
		t.Parallel()

		sel, err := elemsel.ParseSelector("div#id.class1.class2[data-pid=stuff more]")

		require.NoError(t, err)
		assert.Equal(t, []elemsel.Criterion{
			elemsel.TypeCriterion("div"),
			elemsel.IDCriterion("id"),
			elemsel.ClassCriterion("class1"),
			elemsel.ClassCriterion("class2"),
			elemsel.AttributeCriterion("data-pid", "stuff more"),
		}, sel.Criteria)
		assert.Equal(t, "div#id.class1.class2[data-pid=stuff more]", sel.Source)
	})

	t.Run("yields one criterion per segment", func(t *testing.T) {
		t.Parallel()

		cases := map[string]int{
			"div":              1,
			"#main":            1,
			".ad":              1,
			"[role=banner]":    1,
			"p.a.b":            3,
			"#x.y":             2,
			"[a=b].c":          2,
			"nav#top.bar[x=y]": 4,
		}
		for input, want := range cases {
			sel, err := elemsel.ParseSelector(input)
			require.NoError(t, err, input)
			assert.Len(t, sel.Criteria, want, input)
		}
	})

	t.Run("keeps equals signs inside attribute value", func(t *testing.T) {
		t.Parallel()

		sel, err := elemsel.ParseSelector("[data-q=a=b]")

		require.NoError(t, err)
		require.Len(t, sel.Criteria, 1)
		assert.Equal(t, elemsel.AttributeCriterion("data-q", "a=b"), sel.Criteria[0])
	})

	t.Run("lower-cases names and values", func(t *testing.T) {
		t.Parallel()

		sel, err := elemsel.ParseSelector("DIV#Main.Content")

		require.NoError(t, err)
		assert.Equal(t, "div#main.content", sel.String())
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		sel, err := elemsel.ParseSelector("  footer  ")

		require.NoError(t, err)
		assert.Equal(t, []elemsel.Criterion{elemsel.TypeCriterion("footer")}, sel.Criteria)
	})

	t.Run("rejects malformed selectors", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			"",
			"div>p",
			"div p",
			"*",
			"#",
			".",
			"div.",
			"[=v]",
			"[a]",
			"[a=b",
			"[a=]",
		}
		for _, input := range inputs {
			_, err := elemsel.ParseSelector(input)
			var malformed *elemsel.MalformedSelectorError
			require.ErrorAs(t, err, &malformed, input)
			assert.Equal(t, elemsel.EINVALID, elemsel.ErrorCode(err), input)
		}
	})

	t.Run("reports offset of unexpected character", func(t *testing.T) {
		t.Parallel()

		_, err := elemsel.ParseSelector("div>p")

		var malformed *elemsel.MalformedSelectorError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 3, malformed.Pos)
		assert.Equal(t, "div>p", malformed.Selector)
	})
}

func TestParseSelectorList(t *testing.T) {
	t.Parallel()

	t.Run("parses comma-separated entries", func(t *testing.T) {
		t.Parallel()

		set, err := elemsel.ParseSelectorList("script, .ad ,#sidebar")

		require.NoError(t, err)
		require.Equal(t, 3, set.Len())
		assert.Equal(t, "script", set[0].String())
		assert.Equal(t, ".ad", set[1].String())
		assert.Equal(t, "#sidebar", set[2].String())
	})

	t.Run("returns empty set for blank list", func(t *testing.T) {
		t.Parallel()

		set, err := elemsel.ParseSelectorList("   ")

		require.NoError(t, err)
		assert.Equal(t, 0, set.Len())
	})

	t.Run("skips blank entries", func(t *testing.T) {
		t.Parallel()

		set, err := elemsel.ParseSelectorList("div,,p,")

		require.NoError(t, err)
		assert.Equal(t, 2, set.Len())
	})

	t.Run("fails on first malformed entry", func(t *testing.T) {
		t.Parallel()

		_, err := elemsel.ParseSelectorList("div,#,p")

		var malformed *elemsel.MalformedSelectorError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "#", malformed.Selector)
	})
}

func TestCriterion_Match(t *testing.T) {
	t.Parallel()

	t.Run("type matches element name case-insensitively", func(t *testing.T) {
		t.Parallel()

		c := elemsel.TypeCriterion("DIV")

		assert.True(t, c.Match(elemsel.NewElement("div", nil)))
		assert.True(t, c.Match(&elemsel.Node{Type: elemsel.ElementNode, Data: "Div"}))
		assert.False(t, c.Match(elemsel.NewElement("span", nil)))
	})

	t.Run("type never matches text nodes", func(t *testing.T) {
		t.Parallel()

		assert.False(t, elemsel.TypeCriterion("div").Match(elemsel.NewText("div")))
	})

	t.Run("id requires id attribute", func(t *testing.T) {
		t.Parallel()

		c := elemsel.IDCriterion("main")

		assert.True(t, c.Match(elemsel.NewElement("div", attrs("id", "MAIN"))))
		assert.False(t, c.Match(elemsel.NewElement("div", attrs("id", "other"))))
		assert.False(t, c.Match(elemsel.NewElement("div", nil)))
	})

	t.Run("class matches any whitespace-separated token", func(t *testing.T) {
		t.Parallel()

		c := elemsel.ClassCriterion("note")

		assert.True(t, c.Match(elemsel.NewElement("p", attrs("class", "a  NOTE\tb"))))
		assert.False(t, c.Match(elemsel.NewElement("p", attrs("class", "notes"))))
		assert.False(t, c.Match(elemsel.NewElement("p", nil)))
	})

	t.Run("attribute matches name and value case-insensitively", func(t *testing.T) {
		t.Parallel()

		c := elemsel.AttributeCriterion("data-role", "Main Body")

		assert.True(t, c.Match(elemsel.NewElement("div", attrs("class", "x", "DATA-ROLE", "main body"))))
		assert.False(t, c.Match(elemsel.NewElement("div", attrs("data-role", "main"))))
		assert.False(t, c.Match(elemsel.NewElement("div", attrs("role", "main body"))))
	})
}

func TestCompoundSelector_Match(t *testing.T) {
	t.Parallel()

	t.Run("requires every criterion", func(t *testing.T) {
		t.Parallel()

		sel, err := elemsel.ParseSelector("div.note#x")
		require.NoError(t, err)

		none := elemsel.NewElement("span", nil)
		one := elemsel.NewElement("div", nil)
		two := elemsel.NewElement("div", attrs("class", "note"))
		all := elemsel.NewElement("div", attrs("class", "note", "id", "x"))

		assert.False(t, sel.Match(none))
		assert.False(t, sel.Match(one))
		assert.False(t, sel.Match(two))
		assert.True(t, sel.Match(all))
	})

	t.Run("requires every listed class", func(t *testing.T) {
		t.Parallel()

		sel, err := elemsel.ParseSelector(".a.b")
		require.NoError(t, err)

		assert.False(t, sel.Match(elemsel.NewElement("p", attrs("class", "a"))))
		assert.True(t, sel.Match(elemsel.NewElement("p", attrs("class", "b a"))))
	})

	t.Run("empty compound matches nothing", func(t *testing.T) {
		t.Parallel()

		var sel elemsel.CompoundSelector

		assert.False(t, sel.Match(elemsel.NewElement("div", nil)))
	})
}

func TestSelectorSet_Match(t *testing.T) {
	t.Parallel()

	t.Run("matches when any compound matches", func(t *testing.T) {
		t.Parallel()

		set, err := elemsel.ParseSelectorList("nav,.ad")
		require.NoError(t, err)

		assert.True(t, set.Match(elemsel.NewElement("nav", nil)))
		assert.True(t, set.Match(elemsel.NewElement("div", attrs("class", "ad"))))
		assert.False(t, set.Match(elemsel.NewElement("div", nil)))
	})

	t.Run("result is independent of entry order", func(t *testing.T) {
		t.Parallel()

		forward, err := elemsel.ParseSelectorList("nav,.ad,[role=banner]")
		require.NoError(t, err)
		backward, err := elemsel.ParseSelectorList("[role=banner],.ad,nav")
		require.NoError(t, err)

		nodes := []*elemsel.Node{
			elemsel.NewElement("nav", nil),
			elemsel.NewElement("div", attrs("class", "ad")),
			elemsel.NewElement("header", attrs("role", "banner")),
			elemsel.NewElement("main", nil),
			elemsel.NewText("nav"),
		}
		for _, n := range nodes {
			assert.Equal(t, forward.Match(n), backward.Match(n))
		}
	})

	t.Run("empty set matches nothing", func(t *testing.T) {
		t.Parallel()

		var set elemsel.SelectorSet

		assert.Equal(t, 0, set.Len())
		assert.False(t, set.Match(elemsel.NewElement("div", nil)))
	})
}
