// Package validate checks a normalized RenderPlan slide by slide.
//
// Field requirements come from the template catalog: each template's
// required_slots and optional_slots descriptors drive presence, emptiness,
// placeholder, shape and soft-limit checks. Go code only adds what a
// descriptor cannot say, such as buyer_profiles and management_team
// resolving their rows from the Content IR.
//
// Diagnostics land in four lists per slide. Issues, missing fields and
// empty fields make a slide invalid; warnings do not. Validation never
// fails: malformed LLM output is the common case and is reported, not
// raised.
package validate
