package semantic

// Diagnostic texts. The wording matches what C- course tooling compares against.
const (
	msgNotDeclared      = "Symbol '%s' is not declared."
	msgAlreadyDeclared  = "Symbol '%s' is already declared at line %d."
	msgFuncAsVariable   = "Cannot use function '%s' as a variable."
	msgMayBeUninit      = "Variable '%s' may be uninitialized when used here."
	msgSimpleVarCalled  = "'%s' is a simple variable and cannot be called."
	msgTooFewParms      = "Too few parameters passed for function '%s' declared on line %d."
	msgTooManyParms     = "Too many parameters passed for function '%s' declared on line %d."
	msgParmType         = "Expecting type %s in parameter %d of call to '%s' declared on line %d but got type %s."
	msgParmNotArray     = "Not expecting array in parameter %d of call to '%s' declared on line %d."
	msgParmArray        = "Expecting array in parameter %d of call to '%s' declared on line %d."
	msgLHSType          = "'%s' requires operands of type %s but lhs is of type %s."
	msgRHSType          = "'%s' requires operands of type %s but rhs is of type %s."
	msgOpWithArrays     = "The operation '%s' does not work with arrays."
	msgSameType         = "'%s' requires operands of the same type but lhs is type %s and rhs is type %s."
	msgLHSArrayOnly     = "'%s' requires both operands be arrays or not but lhs is an array and rhs is not an array."
	msgRHSArrayOnly     = "'%s' requires both operands be arrays or not but lhs is not an array and rhs is an array."
	msgIndexNonarray    = "Cannot index nonarray '%s'."
	msgIndexType        = "Array '%s' should be indexed by type int but got type %s."
	msgUnindexedArray   = "Array index is the unindexed array '%s'."
	msgUnaryType        = "Unary '%s' requires an operand of type %s but was given type %s."
	msgSizeofNonarray   = "The operation 'sizeof' only works with arrays."
	msgBreakOutside     = "Cannot have a break statement outside of loop."
	msgTestArray        = "Cannot use array as test condition in %s statement."
	msgTestType         = "Expecting Boolean test condition in %s statement but got type %s."
	msgRangeArray       = "Cannot use array in position %d in range of for statement."
	msgRangeType        = "Expecting type int in position %d in range of for statement but got type %s."
	msgReturnNoValue    = "Function '%s' at line %d is expecting to return type %s but return has no value."
	msgReturnArray      = "Cannot return an array."
	msgReturnUnexpected = "Function '%s' at line %d is expecting no return value, but return has a value."
	msgReturnType       = "Function '%s' at line %d is expecting to return type %s but returns type %s."
	msgInitType         = "Initializer for variable '%s' of type %s is of type %s"
	msgInitVarArray     = "Initializer for variable '%s' requires both operands be arrays or not but variable is an array and rhs is not an array."
	msgInitRHSArray     = "Initializer for variable '%s' requires both operands be arrays or not but variable is not an array and rhs is an array."
	msgInitNotConst     = "Initializer for variable '%s' is not a constant expression."
	msgUnusedVar        = "The variable '%s' seems not to be used."
	msgUnusedParm       = "The parameter '%s' seems not to be used."
	msgUnusedFunc       = "The function '%s' seems not to be used."
	msgNoReturn         = "Expecting to return type %s but function '%s' has no return statement."
	msgNoMain           = "A function named 'main' with no parameters must be defined."
)

// LinkerCategory tags the missing-main error.
const LinkerCategory = "LINKER"
