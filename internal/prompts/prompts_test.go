package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLangKnownCodes(t *testing.T) {
	for _, code := range []string{"en", "af", "zu", "xh", "st", "nso"} {
		lang := Lang(code)
		require.NotEmpty(t, lang.Name, "code %q", code)
		require.NotEmpty(t, lang.Instruction, "code %q", code)
		require.NotEmpty(t, lang.Greeting, "code %q", code)
	}
}

func TestLangUnknownFallsBackToEnglish(t *testing.T) {
	require.Equal(t, Lang("en"), Lang("fr"))
	require.Equal(t, Lang("en"), Lang(""))
}

func TestSystemProductFlow(t *testing.T) {
	prompt := System(FlowProduct, "zu", "81415711", "leroy-merlin")

	require.Contains(t, prompt, "Paint Advisor")
	require.Contains(t, prompt, "Customer scanned SKU: 81415711")
	require.Contains(t, prompt, "Store: leroy-merlin")
	require.Contains(t, prompt, Lang("zu").Instruction)
	require.Contains(t, prompt, "Respond ENTIRELY in isiZulu")
}

func TestSystemConsultationFlow(t *testing.T) {
	prompt := System(FlowConsultation, "en", "81415711", "leroy-merlin")

	require.Contains(t, prompt, "AI literacy assistant")
	require.NotContains(t, prompt, "PRODUCT KNOWLEDGE")
}

func TestSystemUnknownFlowDefaultsToProduct(t *testing.T) {
	require.Equal(t,
		System(FlowProduct, "en", "1", "s"),
		System("", "en", "1", "s"))
	require.Equal(t,
		System(FlowProduct, "en", "1", "s"),
		System("mystery", "en", "1", "s"))
}

func TestSystemForbidsMarkdown(t *testing.T) {
	for _, flow := range []string{FlowProduct, FlowConsultation} {
		prompt := System(flow, "en", "1", "s")
		require.True(t, strings.Contains(prompt, "Never use markdown"), "flow %q", flow)
	}
}
