package reporter

// TemplateContextForTest exposes templateContext for
// external tests.
var TemplateContextForTest = templateContext

// RenderForTest exposes render for external tests.
var RenderForTest = render
