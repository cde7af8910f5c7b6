package planning

// Languages offered for generated documents. The first is the default.
var Languages = []string{
	"Castellano",
	"Catalán / Valenciano",
	"Inglés",
}

// CommonNeeds lists the attention-to-diversity options of the context form.
var CommonNeeds = []string{
	"Alumnado TDAH",
	"Altas Capacidades",
	"Dislexia / DEA",
	"Medidas Nivel II (Apoyo ordinario)",
	"Medidas Nivel III (Apoyo específico)",
	"Desconocimiento del idioma",
	"Problemas de conducta",
	"Discapacidad motora",
}

// Methodologies lists the active methodologies of the context form.
var Methodologies = []string{
	"Aprendizaje Basado en Proyectos (ABP)",
	"Flipped Classroom",
	"Gamificación",
	"Aprendizaje Cooperativo",
	"Instrucción Directa y Práctica",
	"Aprendizaje Basado en Retos",
	"Aprendizaje Servicio (ApS)",
	"Design Thinking",
}
