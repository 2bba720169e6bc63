package scope

type Kind int

const (
	Unscoped Kind = iota
	Singleton
	LazySingleton
	FineGrainedLazySingleton
)

func (k Kind) String() string {
	switch k {
	case Unscoped:
		return "unscoped"
	case Singleton:
		return "singleton"
	case LazySingleton:
		return "lazy-singleton"
	case FineGrainedLazySingleton:
		return "fine-grained-lazy-singleton"
	default:
		return "unknown"
	}
}
