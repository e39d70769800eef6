/*
Package canonical implements the canonical encodings of certificate
field data.

Field names come from a fixed, ordered Schema. A record's fields are
serialized in two ways:

Leaf encoding

EncodeLeaf produces the exact bytes that are hashed into a Merkle leaf:
the salt, the field name and the escaped field value joined by a single
pipe. Salts are alphanumeric and names may not contain separator
characters, so the encoding is unambiguous.

Raw delimited format

EncodeRaw produces the display and transport form of a whole record,
"name1|value1||name2|value2". Backslashes and pipes inside values are
escaped as "\\" and "\|". DecodeRaw inverts EncodeRaw exactly and
reports malformed input as an encoding error instead of guessing.
*/
package canonical
