/*
Package colblock implements a column-oriented binary block codec: a single
typed vector of N fixed-size elements is split into fixed-size blocks, each
block independently compressed, and the whole column framed by an 8-byte
header that tells a reader which of three layouts follows.

Data Structure Documentation

Column

A column is a header followed by one of three payload layouts, chosen at
write time by the requested compression level and codec shape.

    Column layout:
    +--------------------+---------+
    | header (8 bytes)   | payload |
    +--------------------+---------+

    Header:
    +--------------------+--------------------+
    | marker (4 bytes)   | discriminant (4)   |
    +--------------------+--------------------+

    (0, 0)        -> uncompressed payload: N*elementSize raw bytes.
    (0, algo)      -> fixed-ratio payload: a codec.FixedRatioCodec applied to
                      successive sourceRepSize-byte units, each producing
                      exactly targetRepSize bytes, with no block index.
    (marker, B)    -> variable-ratio payload: a block index followed by
                      ceil(N/B) independently compressed blocks of B
                      elements each (the last block holds the remainder).

Block index (variable-ratio payload only)

One entry per block plus a trailing sentinel whose offset marks the end of
the last block's payload and whose algorithm field is unused.

    +------------------------+----------------+------------------------+----------------+-------+
    | offset 1 (8 bytes)     | algo 1 (2)     | offset 2 (8 bytes)     | algo 2 (2)     |  ...  |
    +------------------------+----------------+------------------------+----------------+-------+

Offsets are absolute file positions, recorded as each block is written and
back-patched into the reserved index once the last block's offset is known,
so a reader never has to reconstruct them from block sizes.
*/
package colblock
