// Package nml models Traktor collection documents (collection.nml) closely
// enough to edit tracks and the playlist tree while round-tripping everything
// else untouched.
//
// The model is deliberately partial: only the attributes the engine edits are
// named struct fields. Every other attribute lands in an ",any,attr" slice and
// every unrecognized child element is captured as a RawElement with verbatim
// inner XML, so a load/mutate/persist cycle never drops data the engine does
// not understand. Byte-for-byte output identity is not a goal; logical
// identity is.
package nml
