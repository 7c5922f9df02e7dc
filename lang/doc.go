// Package lang implements the dossier template language and the engine that
// resolves it against case data.
//
// A template is plain text carrying markup:
//
//	[[Name]] {Name} <<Name>> [Name]   placeholders, optionally [[caps:Name]],
//	                                  [[upper:Name]] or [[lower:Name]]
//	[[IF:Cond]] ... [[ENDIF:Cond]]    conditional blocks
//	[[#Name]] ... [[/Name]]           collection loops and guards
//	[[ARTICLE]] [[SUBARTICLE]]        numbering markers, with
//	[[ARTICLE_NUMBER]] [[ARTICLE_RESET]]
//	[[CLAUSES]] [[CLAUSE:Group]]      selected clause bodies
//
// [Engine.Render] runs the passes in a fixed order over each document
// region: clause splicing, [Expand], [Strip], [Resolve], then [Number].
// Grammar agreement entries ([BuildChildRules], [AddCollectionRules]) are
// merged into the context map before any region is rendered, and the map is
// read-only while regions render in parallel.
//
// No pass fails. Malformed markup is left visible and reported as a
// [Warning]; placeholders without a value are left verbatim and counted in
// [Unresolved].
//
// Clause selection and other condition-driven decisions use [Node] trees
// evaluated by [Evaluate]; see [ParseCondition] for the document form.
package lang
