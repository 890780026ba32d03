package grammar

import "github.com/alecthomas/participle/v2/lexer"

type Program struct {
	Modules []*Module `parser:"@@*"`
}

type Module struct {
	Name  string  `parser:"\"module\" @Ident \"{\""`
	Decls []*Decl `parser:"@@* \"}\""`
}

type Decl struct {
	Extern   *ExternDecl `parser:"  @@"`
	Function *FuncDecl   `parser:"| @@"`
}

type ExternDecl struct {
	Pos    lexer.Position
	Name   string   `parser:"\"extern\" \"fn\" @Ident \"(\""`
	Params []*Param `parser:"[ @@ { \",\" @@ } ] \")\""`
	Return *string  `parser:"[ \":\" @Ident ] \";\""`
}

type FuncDecl struct {
	Pos    lexer.Position
	Name   string   `parser:"\"fn\" @Ident \"(\""`
	Params []*Param `parser:"[ @@ { \",\" @@ } ] \")\""`
	Return *string  `parser:"[ \":\" @Ident ]"`
	Body   *Block   `parser:"@@"`
}

type Param struct {
	Name string `parser:"@Ident \":\""`
	Type string `parser:"@Ident"`
}

type Block struct {
	Stmts []*Stmt `parser:"\"{\" @@* \"}\""`
}

type Stmt struct {
	Let    *LetStmt    `parser:"  @@"`
	Return *ReturnStmt `parser:"| @@"`
	If     *IfStmt     `parser:"| @@"`
	Assign *AssignStmt `parser:"| @@"`
	Expr   *ExprStmt   `parser:"| @@"`
}

type LetStmt struct {
	Pos  lexer.Position
	Name string `parser:"\"let\" @Ident \"=\""`
	Expr *Expr  `parser:"@@ \";\""`
}

type AssignStmt struct {
	Pos    lexer.Position
	Target string `parser:"@Ident \"=\""`
	Value  *Expr  `parser:"@@ \";\""`
}

type ReturnStmt struct {
	Pos  lexer.Position
	Expr *Expr `parser:"\"return\" [ @@ ] \";\""`
}

type IfStmt struct {
	Cond *Expr  `parser:"\"if\" @@"`
	Then *Block `parser:"@@"`
	Else *Block `parser:"[ \"else\" @@ ]"`
}

type ExprStmt struct {
	Expr *Expr `parser:"@@ \";\""`
}

type Expr struct {
	Left *UnaryExpr `parser:"@@"`
	Ops  []*BinOp   `parser:"{ @@ }"`
}

type BinOp struct {
	Operator string     `parser:"@(\"||\" | \"&&\" | \"==\" | \"!=\" | \"<=\" | \">=\" | \"<\" | \">\" | \"+\" | \"-\" | \"*\" | \"/\" | \"%\")"`
	Right    *UnaryExpr `parser:"@@"`
}

type UnaryExpr struct {
	Op    *string      `parser:"[ @(\"-\" | \"!\") ]"`
	Value *PrimaryExpr `parser:"@@"`
}

type PrimaryExpr struct {
	Pos    lexer.Position
	Call   *CallExpr `parser:"  @@"`
	Bool   *string   `parser:"| @(\"true\" | \"false\")"`
	Number *int64    `parser:"| @Integer"`
	Ident  *string   `parser:"| @Ident"`
	Parens *Expr     `parser:"| \"(\" @@ \")\""`
}

type CallExpr struct {
	Pos    lexer.Position
	Callee string  `parser:"@Ident"`
	Args   []*Expr `parser:"\"(\" [ @@ { \",\" @@ } ] \")\""`
}
