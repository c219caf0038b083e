package grammar

// BaseSource is the embedded base rule set for the Casebook language.
// String literals, comments, and whitespace are built into the lexer
// itself (they need multi-line state tracking); everything else is data.
const BaseSource = `
// Casebook base grammar.
// Keywords (highest precedence, case-sensitive).
SCENE.3: "SCENE" -> keyword
DO.3: "DO" -> keyword
LET.3: "LET" -> keyword
WHILE.3: "WHILE" -> keyword
RETURN.3: "RETURN" -> keyword
THEN.3: "THEN" -> keyword
IF.3: "IF" -> keyword
ELIF.3: "ELIF" -> keyword
ELSE.3: "ELSE" -> keyword
FOR.3: "FOR" -> keyword
IN.3: "IN" -> keyword
FUNCTION.3: "FUNCTION" -> keyword
TRUE.3: "true" -> keyword
FALSE.3: "false" -> keyword
NULL.3: "null" -> keyword

// Operators and punctuation. One precedence tier: longer literals are
// tried first, so ### never lexes as # #.
TRIPLE_LT.2: "<<<" -> punctuation
TRIPLE_GT.2: ">>>" -> punctuation
DOUBLE_HASH.2: "##" -> punctuation
AND.2: "&&" -> punctuation
OR.2: "||" -> punctuation
EQ.2: "==" -> punctuation
NE.2: "!=" -> punctuation
GE.2: ">=" -> punctuation
LE.2: "<=" -> punctuation
HASH.2: "#" -> punctuation
DOLLAR.2: "$" -> punctuation
LPAREN.2: "(" -> punctuation
RPAREN.2: ")" -> punctuation
LBRACE.2: "{" -> punctuation
RBRACE.2: "}" -> punctuation
LSQB.2: "[" -> punctuation
RSQB.2: "]" -> punctuation
COLON.2: ":" -> punctuation
COMMA.2: "," -> punctuation
NOT.2: "!" -> punctuation
EQUALS.2: "=" -> punctuation
PLUS.2: "+" -> punctuation
MINUS.2: "-" -> punctuation
TIMES.2: "*" -> punctuation
DIVIDE.2: "/" -> punctuation
GT.2: ">" -> punctuation
LT.2: "<" -> punctuation

// Section headers and scene identifiers.
SECTION_TYPE.2: "OPTIONS" | "SETUP" | "COVER" | "FRONT" | "HINTS" | "DOCUMENTS" | "LEADS" | "DAY_SECTION" | "GENERIC" | "END" -> scene
ID_TEXT.2: /[A-Za-z][A-Za-z0-9_]*(?:[-.\/][A-Za-z0-9_]+)+/ -> scene

// Actions and identifiers.
FUNCTION_NAME.2: /[a-zA-Z][a-zA-Z0-9_]*(?:configure|check|get|set|is|has|find|create|update|delete|validate|process)[A-Za-z0-9_]*/ -> action
IDENTIFIER.2: /[A-Za-z_][A-Za-z0-9_]*/ -> identifier

// Numbers lex as one token but carry no dedicated style.
NUMBER.1: /[0-9]+(?:\.[0-9]+)?/ -> default
`
